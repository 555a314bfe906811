package library

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLoanPeriod is how long a borrowed item may be kept.
const DefaultLoanPeriod = 7 * 24 * time.Hour

// LoanObserver is told about every completed borrow and return. Observers run
// synchronously, after the ledger state has changed, and cannot veto it.
type LoanObserver interface {
	LoanStarted(loan Loan)
	LoanEnded(loan Loan, returnedAt time.Time)
}

type loanKey struct {
	userID int
	itemID int
}

// Ledger tracks who holds what. Borrow and Return on the same user are
// serialized by that user's lock.
type Ledger struct {
	period    time.Duration
	now       func() time.Time
	observers []LoanObserver
	logger    *slog.Logger

	mu     sync.RWMutex
	active map[loanKey]Loan
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

func WithLoanPeriod(d time.Duration) LedgerOption {
	return func(l *Ledger) {
		if d > 0 {
			l.period = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func WithObserver(o LoanObserver) LedgerOption {
	return func(l *Ledger) {
		if o != nil {
			l.observers = append(l.observers, o)
		}
	}
}

func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		period: DefaultLoanPeriod,
		now:    time.Now,
		logger: discardLogger(),
		active: make(map[loanKey]Loan),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Borrow lends item to user. It returns false, changing nothing, when the
// user is at capacity or already holds the item.
func (l *Ledger) Borrow(user *User, item Item) bool {
	if user == nil || item == nil {
		return false
	}
	meta := item.Meta()

	user.mu.Lock()
	if len(user.borrowed) >= user.MaxBorrowedItems {
		user.mu.Unlock()
		l.logger.Info("borrow refused: limit reached", "user_id", user.ID, "item_id", meta.ID, "limit", user.MaxBorrowedItems)
		return false
	}
	if user.indexOf(meta.ID) >= 0 {
		user.mu.Unlock()
		l.logger.Info("borrow refused: already held", "user_id", user.ID, "item_id", meta.ID)
		return false
	}
	user.borrowed = append(user.borrowed, item)

	now := l.now()
	loan := Loan{
		ID:        uuid.New(),
		UserID:    user.ID,
		ItemID:    meta.ID,
		ItemTitle: meta.Title,
		LoanDate:  now,
		DueDate:   now.Add(l.period),
	}
	l.mu.Lock()
	l.active[loanKey{user.ID, meta.ID}] = loan
	l.mu.Unlock()
	user.mu.Unlock()

	l.logger.Info("loan made", "loan_id", loan.ID, "user_id", user.ID, "item_id", meta.ID, "title", meta.Title, "due", loan.DueDate)
	for _, o := range l.observers {
		o.LoanStarted(loan)
	}
	return true
}

// Return takes item back from user. It returns false when the user does not
// hold the item.
func (l *Ledger) Return(user *User, item Item) bool {
	if user == nil || item == nil {
		return false
	}
	itemID := item.Meta().ID

	user.mu.Lock()
	idx := user.indexOf(itemID)
	if idx < 0 {
		user.mu.Unlock()
		return false
	}
	user.borrowed = append(user.borrowed[:idx], user.borrowed[idx+1:]...)

	key := loanKey{user.ID, itemID}
	l.mu.Lock()
	loan, tracked := l.active[key]
	delete(l.active, key)
	l.mu.Unlock()
	user.mu.Unlock()

	returnedAt := l.now()
	l.logger.Info("item returned", "user_id", user.ID, "item_id", itemID)
	if tracked {
		for _, o := range l.observers {
			o.LoanEnded(loan, returnedAt)
		}
	}
	return true
}

// ReturnByTitle returns the first borrowed item whose title matches,
// ignoring case and surrounding whitespace.
func (l *Ledger) ReturnByTitle(user *User, title string) (Item, bool) {
	if user == nil {
		return nil, false
	}
	var found Item
	for _, it := range user.BorrowedItems() {
		if titleMatches(it.Meta().Title, title) {
			found = it
			break
		}
	}
	if found == nil {
		return nil, false
	}
	if !l.Return(user, found) {
		return nil, false
	}
	return found, true
}

// ReturnAll takes back everything user holds and reports how many items
// were returned.
func (l *Ledger) ReturnAll(user *User) int {
	if user == nil {
		return 0
	}
	n := 0
	for _, it := range user.BorrowedItems() {
		if l.Return(user, it) {
			n++
		}
	}
	return n
}

func (l *Ledger) ActiveLoan(userID, itemID int) (Loan, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	loan, ok := l.active[loanKey{userID, itemID}]
	return loan, ok
}

// ActiveLoans lists the user's open loans, oldest first.
func (l *Ledger) ActiveLoans(userID int) []Loan {
	return l.loansWhere(func(k loanKey) bool { return k.userID == userID })
}

// AllActiveLoans lists every open loan, oldest first.
func (l *Ledger) AllActiveLoans() []Loan {
	return l.loansWhere(func(loanKey) bool { return true })
}

func (l *Ledger) loansWhere(keep func(loanKey) bool) []Loan {
	l.mu.RLock()
	out := make([]Loan, 0, len(l.active))
	for k, loan := range l.active {
		if keep(k) {
			out = append(out, loan)
		}
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LoanDate.Equal(out[j].LoanDate) {
			if out[i].UserID == out[j].UserID {
				return out[i].ItemID < out[j].ItemID
			}
			return out[i].UserID < out[j].UserID
		}
		return out[i].LoanDate.Before(out[j].LoanDate)
	})
	return out
}
