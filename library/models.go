package library

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the variant of a catalog item.
type Kind string

const (
	KindBook     Kind = "book"
	KindMagazine Kind = "magazine"
)

// Metadata holds the fields every catalog item shares.
type Metadata struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
}

func (m *Metadata) String() string {
	return fmt.Sprintf("ID: %d, Title: %s, Publication Year: %d", m.ID, m.Title, m.PublicationYear)
}

// Item is a catalog entry. Book and Magazine are the only implementations.
type Item interface {
	fmt.Stringer
	Kind() Kind
	Meta() *Metadata
}

// Book is a catalog item with an author and a genre.
type Book struct {
	Metadata
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

func NewBook(id int, title string, year int, author, genre string) *Book {
	return &Book{
		Metadata: Metadata{ID: id, Title: title, PublicationYear: year},
		Author:   author,
		Genre:    genre,
	}
}

func (b *Book) Kind() Kind      { return KindBook }
func (b *Book) Meta() *Metadata { return &b.Metadata }

func (b *Book) String() string {
	return b.Metadata.String() + fmt.Sprintf(", Author: %s, Genre: %s", b.Author, b.Genre)
}

// Magazine is a catalog item identified by its edition.
type Magazine struct {
	Metadata
	EditionNumber int    `json:"edition_number"`
	Topics        string `json:"topics"`
}

func NewMagazine(id int, title string, year, edition int, topics string) *Magazine {
	return &Magazine{
		Metadata:      Metadata{ID: id, Title: title, PublicationYear: year},
		EditionNumber: edition,
		Topics:        topics,
	}
}

func (m *Magazine) Kind() Kind      { return KindMagazine }
func (m *Magazine) Meta() *Metadata { return &m.Metadata }

func (m *Magazine) String() string {
	return m.Metadata.String() + fmt.Sprintf(", Edition Number: %d, Topics: %s", m.EditionNumber, m.Topics)
}

// titleMatches is the matching policy shared by every title lookup exposed to
// the console: surrounding whitespace is ignored and case folds.
func titleMatches(title, query string) bool {
	return strings.EqualFold(strings.TrimSpace(title), strings.TrimSpace(query))
}

// User is a registered borrower. The borrowed set holds references to items
// the user currently has; the user never owns them.
type User struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	MaxBorrowedItems int    `json:"max_borrowed_items"`

	mu       sync.Mutex
	borrowed []Item
}

func NewUser(id int, name, email string, maxBorrowed int) *User {
	return &User{ID: id, Name: name, Email: email, MaxBorrowedItems: maxBorrowed}
}

// BorrowedItems returns a copy of the borrowed set in borrow order.
func (u *User) BorrowedItems() []Item {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Item, len(u.borrowed))
	copy(out, u.borrowed)
	return out
}

// BorrowedCount reports how many items the user currently holds.
func (u *User) BorrowedCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.borrowed)
}

// indexOf must be called with u.mu held.
func (u *User) indexOf(itemID int) int {
	for i, it := range u.borrowed {
		if it.Meta().ID == itemID {
			return i
		}
	}
	return -1
}

func (u *User) String() string {
	items := u.BorrowedItems()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return fmt.Sprintf("ID: %d, Name: %s, Email: %s, Max Borrowed Items: %d, Borrowed Items: %s",
		u.ID, u.Name, u.Email, u.MaxBorrowedItems, strings.Join(parts, ", "))
}

// Loan records a user holding an item.
type Loan struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	ItemID    int       `json:"item_id"`
	ItemTitle string    `json:"item_title"`
	LoanDate  time.Time `json:"loan_date"`
	DueDate   time.Time `json:"due_date"`
}

func (l Loan) String() string {
	return fmt.Sprintf("Item: %s, User: %d, Loan Date: %s, Return Date: %s",
		l.ItemTitle, l.UserID, l.LoanDate.Format(time.DateTime), l.DueDate.Format(time.DateTime))
}

// LoanRecord is an archived loan. ReturnedAt is nil while the loan is active.
type LoanRecord struct {
	Loan
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

func (r LoanRecord) String() string {
	returned := "on loan"
	if r.ReturnedAt != nil {
		returned = r.ReturnedAt.Format(time.DateTime)
	}
	return fmt.Sprintf("Item: %s, User: %d, Loan Date: %s, Due Date: %s, Returned: %s",
		r.ItemTitle, r.UserID, r.LoanDate.Format(time.DateTime), r.DueDate.Format(time.DateTime), returned)
}

// Snapshot is a point-in-time export of a session.
type Snapshot struct {
	Books         []*Book     `json:"books"`
	Magazines     []*Magazine `json:"magazines"`
	Users         []UserView  `json:"users"`
	ActiveLoans   []Loan      `json:"active_loans"`
	SearchHistory []string    `json:"search_history"`
}

// UserView is the serializable form of a User.
type UserView struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	MaxBorrowedItems int    `json:"max_borrowed_items"`
	BorrowedItemIDs  []int  `json:"borrowed_item_ids"`
}
