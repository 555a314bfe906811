package library

import "sync"

// NotificationQueue is a FIFO of outbound reminder messages.
type NotificationQueue struct {
	mu    sync.Mutex
	items []string
}

func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{items: make([]string, 0)}
}

func (q *NotificationQueue) Enqueue(msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, msg)
}

// DrainAll removes and returns every pending message in the order they were
// enqueued. Draining an empty queue returns an empty slice.
func (q *NotificationQueue) DrainAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = make([]string, 0)
	return out
}

func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// SearchHistory is an append-only LIFO record of search terms.
type SearchHistory struct {
	mu    sync.Mutex
	terms []string
}

func NewSearchHistory() *SearchHistory {
	return &SearchHistory{}
}

func (h *SearchHistory) Push(term string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terms = append(h.terms, term)
}

// Peek returns the most recent term.
func (h *SearchHistory) Peek() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.terms) == 0 {
		return "", false
	}
	return h.terms[len(h.terms)-1], true
}

// Entries returns every term, most recent first.
func (h *SearchHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.terms))
	for i, t := range h.terms {
		out[len(h.terms)-1-i] = t
	}
	return out
}

func (h *SearchHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.terms)
}
