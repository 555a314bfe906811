package library

import "errors"

var (
	ErrEmptyTerm       = errors.New("no search term given")
	ErrItemNotFound    = errors.New("item not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateItem   = errors.New("item id already in use")
	ErrDuplicateUser   = errors.New("user already exists")
	ErrLimitReached    = errors.New("borrowing limit reached")
	ErrAlreadyBorrowed = errors.New("item already borrowed by this user")
	ErrNotBorrowed     = errors.New("item not found in the user's loans")
	ErrNoArchive       = errors.New("loan archive disabled")
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidUser     = errors.New("invalid user")
)
