package library

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(opts...)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seededSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := newSession(t, opts...)
	require.NoError(t, s.Seed())
	return s
}

func TestSeed(t *testing.T) {
	s := seededSession(t)

	assert.Len(t, s.Books.GetAll(), 6)
	assert.Len(t, s.Magazines.GetAll(), 6)
	assert.Equal(t, 12, s.Items.Len())
	assert.Equal(t, 12, s.Users.Len())

	u8, ok := s.Users.Find(8)
	require.True(t, ok)
	assert.Equal(t, "usuario7@email.com", u8.Email)
	assert.Equal(t, 2, u8.MaxBorrowedItems)

	assert.Error(t, s.Seed(), "seeding twice collides on ids")
}

func TestSearchItem(t *testing.T) {
	s := seededSession(t)

	item, err := s.SearchItem("  libro 1 ")
	require.NoError(t, err)
	assert.Equal(t, KindBook, item.Kind())
	assert.Equal(t, 1, item.Meta().ID)

	item, err = s.SearchItem("REVISTA 2")
	require.NoError(t, err)
	assert.Equal(t, KindMagazine, item.Kind())

	_, err = s.SearchItem("Libro 99")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = s.SearchItem("   ")
	assert.ErrorIs(t, err, ErrEmptyTerm)

	assert.Equal(t, []string{"Libro 99", "REVISTA 2", "libro 1"}, s.History.Entries())
}

func TestRemoveBookFromBothViews(t *testing.T) {
	s := seededSession(t)

	removed, err := s.RemoveBook("LIBRO 1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Meta().ID)

	_, ok := s.Books.Search("Libro 1")
	assert.False(t, ok)
	_, ok = s.Items.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 11, s.Items.Len())

	_, err = s.RemoveBook("Libro 1")
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = s.RemoveBook("Revista 1")
	assert.ErrorIs(t, err, ErrItemNotFound, "remove book does not touch magazines")

	_, err = s.RemoveMagazine("revista 1")
	assert.NoError(t, err)
}

func TestAddDuplicates(t *testing.T) {
	s := seededSession(t)

	assert.ErrorIs(t, s.AddBook(NewBook(3, "Clash", 2000, "a", "g")), ErrDuplicateItem)
	assert.NoError(t, s.AddMagazine(NewMagazine(13, "Revista 1", 2021, 7, "Tema 7")), "titles may repeat")
	assert.ErrorIs(t, s.RegisterUser(NewUser(1, "Again", "a@email.com", 1)), ErrDuplicateUser)
}

func TestAddRejectsInvalid(t *testing.T) {
	s := seededSession(t)

	assert.ErrorIs(t, s.AddBook(nil), ErrInvalidItem)
	assert.ErrorIs(t, s.AddMagazine((*Magazine)(nil)), ErrInvalidItem)
	assert.ErrorIs(t, s.RegisterUser(NewUser(50, "neg", "n@email.com", -1)), ErrInvalidUser)
	assert.ErrorIs(t, s.RegisterUser(nil), ErrInvalidUser)

	_, ok := s.Users.Find(50)
	assert.False(t, ok)
	assert.Equal(t, 12, s.Items.Len())
}

func TestSessionBorrowScenario(t *testing.T) {
	s := seededSession(t)

	loan, err := s.Borrow(1, "Libro 1")
	require.NoError(t, err)
	assert.Equal(t, 1, loan.ItemID)
	assert.Equal(t, loan.LoanDate.Add(DefaultLoanPeriod), loan.DueDate)

	_, err = s.Borrow(1, "revista 1")
	require.NoError(t, err)

	_, err = s.Borrow(1, "Libro 2")
	assert.ErrorIs(t, err, ErrLimitReached)

	u, _ := s.Users.Find(1)
	assert.Equal(t, []int{1, 3}, ids(u.BorrowedItems()))

	_, err = s.Borrow(2, "Libro 1")
	assert.NoError(t, err, "another user may hold the same title")
	_, err = s.Borrow(2, "libro 1")
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)

	_, err = s.Borrow(99, "Libro 1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = s.Borrow(3, "Nada")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSessionReturn(t *testing.T) {
	s := seededSession(t)
	_, err := s.Borrow(4, "Libro 3")
	require.NoError(t, err)

	_, err = s.Return(4, "Libro 4")
	assert.ErrorIs(t, err, ErrNotBorrowed)

	item, err := s.Return(4, " libro 3")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Meta().ID)

	_, err = s.Return(44, "Libro 3")
	assert.ErrorIs(t, err, ErrUserNotFound)

	history, err := s.LoanHistory(4)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.NotNil(t, history[0].ReturnedAt)
}

func TestRemoveUserClosesLoans(t *testing.T) {
	s := seededSession(t)
	_, err := s.Borrow(5, "Libro 5")
	require.NoError(t, err)

	removed, err := s.RemoveUser(5)
	require.NoError(t, err)
	assert.Equal(t, "Usuario 5", removed.Name)
	assert.Zero(t, removed.BorrowedCount())
	assert.Empty(t, s.Loans.ActiveLoans(5))

	_, err = s.RemoveUser(5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendReminderQueuesNotification(t *testing.T) {
	var out bytes.Buffer
	s := seededSession(t, WithNotifier(WriterNotifier{W: &out}))

	require.NoError(t, s.SendReminder(2))
	require.NoError(t, s.SendReminder(3))
	assert.ErrorIs(t, s.SendReminder(42), ErrUserNotFound)

	assert.Equal(t, "Notification sent to Usuario 2: Please return the borrowed items.\n"+
		"Notification sent to Usuario 3: Please return the borrowed items.\n", out.String())
	assert.Equal(t, []string{"Reminder sent to Usuario 2", "Reminder sent to Usuario 3"}, s.DrainNotifications())
	assert.Empty(t, s.DrainNotifications())
}

type failingNotifier struct{}

func (failingNotifier) Notify(*User, string) error { return errors.New("mailbox full") }

func TestSendReminderNotifierFailure(t *testing.T) {
	s := seededSession(t, WithNotifier(failingNotifier{}))

	assert.Error(t, s.SendReminder(1))
	assert.Zero(t, s.Notifications.Len(), "nothing queued when delivery fails")
}

func TestBorrowAndReturnDoNotNotify(t *testing.T) {
	s := seededSession(t)
	_, err := s.Borrow(1, "Libro 1")
	require.NoError(t, err)
	_, err = s.Return(1, "Libro 1")
	require.NoError(t, err)

	assert.Empty(t, s.DrainNotifications())
}

func TestLoanRecordString(t *testing.T) {
	s := seededSession(t)
	_, err := s.Borrow(4, "Libro 3")
	require.NoError(t, err)

	history, err := s.LoanHistory(4)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].String(), "Returned: on loan")

	_, err = s.Return(4, "Libro 3")
	require.NoError(t, err)
	history, err = s.LoanHistory(4)
	require.NoError(t, err)
	rec := history[0]
	require.NotNil(t, rec.ReturnedAt)
	assert.Contains(t, rec.String(), "Due Date: "+rec.DueDate.Format(time.DateTime))
	assert.Contains(t, rec.String(), "Returned: "+rec.ReturnedAt.Format(time.DateTime))
}

func TestSessionWithoutArchive(t *testing.T) {
	s := seededSession(t, WithoutArchive())
	_, err := s.Borrow(1, "Libro 1")
	require.NoError(t, err)

	_, err = s.LoanHistory(1)
	assert.ErrorIs(t, err, ErrNoArchive)
}

func TestSnapshot(t *testing.T) {
	s := seededSession(t)
	_, err := s.Borrow(1, "Libro 2")
	require.NoError(t, err)
	_, _ = s.SearchItem("Revista 6")

	snap := s.Snapshot()
	assert.Len(t, snap.Books, 6)
	assert.Len(t, snap.Magazines, 6)
	require.Len(t, snap.Users, 12)
	assert.Equal(t, []int{2}, snap.Users[0].BorrowedItemIDs)
	assert.Empty(t, snap.Users[1].BorrowedItemIDs)
	require.Len(t, snap.ActiveLoans, 1)
	assert.Equal(t, "Libro 2", snap.ActiveLoans[0].ItemTitle)
	assert.Equal(t, []string{"Revista 6"}, snap.SearchHistory)
}

func TestUserString(t *testing.T) {
	s := seededSession(t)
	_, err := s.Borrow(1, "Libro 1")
	require.NoError(t, err)

	u, _ := s.Users.Find(1)
	assert.Equal(t, "ID: 1, Name: Usuario 1, Email: usuario1@email.com, Max Borrowed Items: 2, Borrowed Items: "+
		"ID: 1, Title: Libro 1, Publication Year: 2000, Author: Autor 1, Genre: Género 1", u.String())
}
