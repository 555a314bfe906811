package library

import (
	"fmt"
	"log/slog"
	"strings"
)

// Session bundles every lending component. The driver owns one Session and
// passes it around; there is no package-level state.
type Session struct {
	Items         *Inventory
	Books         *Catalog
	Magazines     *Catalog
	Users         *Registry
	Loans         *Ledger
	Notifications *NotificationQueue
	History       *SearchHistory

	archive  *LoanArchive
	notifier Notifier
	logger   *slog.Logger
}

type sessionConfig struct {
	logger     *slog.Logger
	notifier   Notifier
	ledgerOpts []LedgerOption
	noArchive  bool
}

// Option configures a Session.
type Option func(*sessionConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *sessionConfig) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLedgerOptions forwards options to the session's Ledger.
func WithLedgerOptions(opts ...LedgerOption) Option {
	return func(c *sessionConfig) { c.ledgerOpts = append(c.ledgerOpts, opts...) }
}

// WithoutArchive skips the SQLite loan archive; LoanHistory then fails with
// ErrNoArchive.
func WithoutArchive() Option {
	return func(c *sessionConfig) { c.noArchive = true }
}

// NewSession builds an empty session.
func NewSession(opts ...Option) (*Session, error) {
	cfg := sessionConfig{logger: discardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.notifier == nil {
		cfg.notifier = LogNotifier{Logger: cfg.logger}
	}

	s := &Session{
		Notifications: NewNotificationQueue(),
		History:       NewSearchHistory(),
		notifier:      cfg.notifier,
		logger:        cfg.logger,
	}

	ledgerOpts := []LedgerOption{WithLedgerLogger(cfg.logger.With("component", "ledger"))}
	if !cfg.noArchive {
		archive, err := NewLoanArchive(cfg.logger.With("component", "archive"))
		if err != nil {
			return nil, fmt.Errorf("open loan archive: %w", err)
		}
		s.archive = archive
		ledgerOpts = append(ledgerOpts, WithObserver(archive))
	}
	ledgerOpts = append(ledgerOpts, cfg.ledgerOpts...)

	s.Items = NewInventory(cfg.logger.With("component", "catalog"))
	s.Books = NewCatalog(KindBook, s.Items)
	s.Magazines = NewCatalog(KindMagazine, s.Items)
	s.Users = NewRegistry(cfg.logger.With("component", "registry"))
	s.Loans = NewLedger(ledgerOpts...)
	return s, nil
}

// Close releases the loan archive.
func (s *Session) Close() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// ------------------ Catalog helpers ------------------

// SearchItem looks the term up among books, then magazines. Every non-empty
// term is recorded in the search history, found or not.
func (s *Session) SearchItem(term string) (Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	s.History.Push(term)

	if b, ok := s.Books.FindByTitle(term); ok {
		return b, nil
	}
	if m, ok := s.Magazines.FindByTitle(term); ok {
		return m, nil
	}
	return nil, fmt.Errorf("%q: %w", term, ErrItemNotFound)
}

func (s *Session) AddBook(b *Book) error {
	if b == nil {
		return fmt.Errorf("book: %w", ErrInvalidItem)
	}
	if !s.Books.Add(b) {
		return fmt.Errorf("book %d: %w", b.ID, ErrDuplicateItem)
	}
	return nil
}

func (s *Session) AddMagazine(m *Magazine) error {
	if m == nil {
		return fmt.Errorf("magazine: %w", ErrInvalidItem)
	}
	if !s.Magazines.Add(m) {
		return fmt.Errorf("magazine %d: %w", m.ID, ErrDuplicateItem)
	}
	return nil
}

func (s *Session) RemoveBook(title string) (Item, error) {
	return s.removeFrom(s.Books, title)
}

func (s *Session) RemoveMagazine(title string) (Item, error) {
	return s.removeFrom(s.Magazines, title)
}

func (s *Session) removeFrom(c *Catalog, title string) (Item, error) {
	item, ok := c.RemoveByTitle(title)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", c.Kind(), strings.TrimSpace(title), ErrItemNotFound)
	}
	return item, nil
}

// ------------------ User helpers ------------------

func (s *Session) RegisterUser(u *User) error {
	switch {
	case u == nil:
		return fmt.Errorf("user: %w", ErrInvalidUser)
	case u.MaxBorrowedItems < 0:
		return fmt.Errorf("user %d: negative borrowing limit %d: %w", u.ID, u.MaxBorrowedItems, ErrInvalidUser)
	}
	if !s.Users.Add(u) {
		return fmt.Errorf("user %d: %w", u.ID, ErrDuplicateUser)
	}
	return nil
}

// RemoveUser unregisters the user after taking back everything they hold.
func (s *Session) RemoveUser(userID int) (*User, error) {
	user, ok := s.Users.Find(userID)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	if n := s.Loans.ReturnAll(user); n > 0 {
		s.logger.Info("closed loans of removed user", "user_id", userID, "count", n)
	}
	s.Users.Remove(userID)
	return user, nil
}

func (s *Session) findUser(userID int) (*User, error) {
	user, ok := s.Users.Find(userID)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	return user, nil
}

// ------------------ Circulation ------------------

// Borrow lends the item titled title to the user.
func (s *Session) Borrow(userID int, title string) (Loan, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return Loan{}, err
	}
	item, ok := s.Items.FindByTitle(title)
	if !ok {
		return Loan{}, fmt.Errorf("%q: %w", strings.TrimSpace(title), ErrItemNotFound)
	}

	if !s.Loans.Borrow(user, item) {
		if user.BorrowedCount() >= user.MaxBorrowedItems {
			return Loan{}, fmt.Errorf("user %d holds %d of %d: %w", user.ID, user.BorrowedCount(), user.MaxBorrowedItems, ErrLimitReached)
		}
		return Loan{}, fmt.Errorf("%q: %w", item.Meta().Title, ErrAlreadyBorrowed)
	}
	loan, _ := s.Loans.ActiveLoan(user.ID, item.Meta().ID)
	return loan, nil
}

// Return takes back the borrowed item titled title from the user.
func (s *Session) Return(userID int, title string) (Item, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	item, ok := s.Loans.ReturnByTitle(user, title)
	if !ok {
		return nil, fmt.Errorf("%q: %w", strings.TrimSpace(title), ErrNotBorrowed)
	}
	return item, nil
}

// SendReminder notifies the user and queues a confirmation message.
func (s *Session) SendReminder(userID int) error {
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if err := s.notifier.Notify(user, ReminderMessage); err != nil {
		return fmt.Errorf("notify user %d: %w", userID, err)
	}
	s.Notifications.Enqueue(fmt.Sprintf("Reminder sent to %s", user.Name))
	return nil
}

// DrainNotifications empties the notification queue.
func (s *Session) DrainNotifications() []string {
	return s.Notifications.DrainAll()
}

// LoanHistory returns every archived loan of the user, oldest first.
func (s *Session) LoanHistory(userID int) ([]LoanRecord, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.ForUser(userID)
}

// ------------------ Export ------------------

// Snapshot copies the current state for export.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Books:         make([]*Book, 0),
		Magazines:     make([]*Magazine, 0),
		Users:         make([]UserView, 0),
		ActiveLoans:   s.Loans.AllActiveLoans(),
		SearchHistory: s.History.Entries(),
	}
	for _, it := range s.Items.All() {
		switch v := it.(type) {
		case *Book:
			snap.Books = append(snap.Books, v)
		case *Magazine:
			snap.Magazines = append(snap.Magazines, v)
		}
	}
	for _, u := range s.Users.GetAll() {
		view := UserView{
			ID:               u.ID,
			Name:             u.Name,
			Email:            u.Email,
			MaxBorrowedItems: u.MaxBorrowedItems,
			BorrowedItemIDs:  make([]int, 0),
		}
		for _, it := range u.BorrowedItems() {
			view.BorrowedItemIDs = append(view.BorrowedItemIDs, it.Meta().ID)
		}
		snap.Users = append(snap.Users, view)
	}
	return snap
}

// ------------------ Utilities ------------------

// PrettyItem formats an item for lists.
func PrettyItem(it Item) string {
	m := it.Meta()
	var extra string
	switch v := it.(type) {
	case *Book:
		extra = v.Author
	case *Magazine:
		extra = fmt.Sprintf("Edition %d", v.EditionNumber)
	}
	return fmt.Sprintf("%-5d %-30s %-6d %-25s", m.ID, m.Title, m.PublicationYear, extra)
}
