package library

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry holds users keyed by their identifier.
type Registry struct {
	mu     sync.RWMutex
	users  map[int]*User
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = discardLogger()
	}
	return &Registry{users: make(map[int]*User), logger: logger}
}

// Add inserts user unless its identifier is taken, in which case the
// existing user is kept and false is returned. Users with a negative
// borrowing limit are refused.
func (r *Registry) Add(user *User) bool {
	if user == nil {
		return false
	}
	if user.MaxBorrowedItems < 0 {
		r.logger.Warn("user has negative borrowing limit", "id", user.ID, "max_borrowed_items", user.MaxBorrowedItems)
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		r.logger.Warn("user already exists", "id", user.ID)
		return false
	}
	r.users[user.ID] = user
	r.logger.Info("user added", "id", user.ID, "name", user.Name)
	return true
}

func (r *Registry) Remove(userID int) (*User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, false
	}
	delete(r.users, userID)
	r.logger.Info("user removed", "id", userID, "name", user.Name)
	return user, true
}

func (r *Registry) Find(userID int) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	return user, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// GetAll returns every user ordered by identifier.
func (r *Registry) GetAll() []*User {
	r.mu.RLock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
