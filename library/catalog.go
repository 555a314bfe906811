package library

import (
	"log/slog"
	"sync"
)

// Inventory is the single store of every catalog item, keyed by identifier.
// Insertion order is kept so listings are stable.
type Inventory struct {
	mu     sync.RWMutex
	byID   map[int]Item
	order  []int
	logger *slog.Logger
}

func NewInventory(logger *slog.Logger) *Inventory {
	if logger == nil {
		logger = discardLogger()
	}
	return &Inventory{byID: make(map[int]Item), logger: logger}
}

// Add stores item. It fails if the identifier is already taken.
func (inv *Inventory) Add(item Item) bool {
	if isNilItem(item) {
		return false
	}
	m := item.Meta()

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, exists := inv.byID[m.ID]; exists {
		inv.logger.Warn("item id already in use", "id", m.ID, "title", m.Title)
		return false
	}
	inv.byID[m.ID] = item
	inv.order = append(inv.order, m.ID)
	inv.logger.Info("item added", "id", m.ID, "kind", item.Kind(), "title", m.Title)
	return true
}

// Remove deletes the item with the given identifier.
func (inv *Inventory) Remove(id int) (Item, bool) {
	return inv.removeIf(id, func(Item) bool { return true })
}

// removeIf deletes the item with the given identifier when match reports true
// for it. The check and the delete happen under one lock.
func (inv *Inventory) removeIf(id int, match func(Item) bool) (Item, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	item, ok := inv.byID[id]
	if !ok || !match(item) {
		return nil, false
	}
	delete(inv.byID, id)
	for i, v := range inv.order {
		if v == id {
			inv.order = append(inv.order[:i], inv.order[i+1:]...)
			break
		}
	}
	inv.logger.Info("item removed", "id", id, "kind", item.Kind(), "title", item.Meta().Title)
	return item, true
}

func (inv *Inventory) Get(id int) (Item, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	item, ok := inv.byID[id]
	return item, ok
}

func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.order)
}

// All returns every item across kinds in insertion order.
func (inv *Inventory) All() []Item {
	return inv.collect(func(Item) bool { return true })
}

// OfKind returns the items of one kind in insertion order.
func (inv *Inventory) OfKind(kind Kind) []Item {
	return inv.collect(func(it Item) bool { return it.Kind() == kind })
}

// FindByTitle returns the first item, of any kind, whose title matches query
// ignoring case and surrounding whitespace.
func (inv *Inventory) FindByTitle(query string) (Item, bool) {
	return inv.first(func(it Item) bool { return titleMatches(it.Meta().Title, query) })
}

func (inv *Inventory) collect(keep func(Item) bool) []Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]Item, 0, len(inv.order))
	for _, id := range inv.order {
		if it := inv.byID[id]; keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (inv *Inventory) first(match func(Item) bool) (Item, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, id := range inv.order {
		if it := inv.byID[id]; match(it) {
			return it, true
		}
	}
	return nil, false
}

// Catalog is the view of one item kind over an Inventory. Books and
// magazines share the inventory, so removing through a catalog also removes
// the item from the all-items listing.
type Catalog struct {
	kind Kind
	inv  *Inventory
}

func NewCatalog(kind Kind, inv *Inventory) *Catalog {
	return &Catalog{kind: kind, inv: inv}
}

func (c *Catalog) Kind() Kind { return c.kind }

// Add appends item. Titles are not checked for duplicates; identifiers and
// the item kind are.
func (c *Catalog) Add(item Item) bool {
	if isNilItem(item) {
		return false
	}
	if item.Kind() != c.kind {
		c.inv.logger.Warn("item kind does not match catalog", "catalog", c.kind, "kind", item.Kind(), "id", item.Meta().ID)
		return false
	}
	return c.inv.Add(item)
}

// Remove deletes item by identifier. It reports false when the item is not
// in this catalog.
func (c *Catalog) Remove(item Item) bool {
	if isNilItem(item) {
		return false
	}
	_, ok := c.inv.removeIf(item.Meta().ID, func(it Item) bool { return it.Kind() == c.kind })
	return ok
}

// RemoveByTitle removes the first item found by FindByTitle.
func (c *Catalog) RemoveByTitle(title string) (Item, bool) {
	item, ok := c.FindByTitle(title)
	if !ok {
		return nil, false
	}
	return item, c.Remove(item)
}

func (c *Catalog) Get(id int) (Item, bool) {
	item, ok := c.inv.Get(id)
	if !ok || item.Kind() != c.kind {
		return nil, false
	}
	return item, true
}

// Search returns the first item whose title equals title exactly.
func (c *Catalog) Search(title string) (Item, bool) {
	return c.inv.first(func(it Item) bool {
		return it.Kind() == c.kind && it.Meta().Title == title
	})
}

// FindByTitle is the lenient lookup: case-insensitive and trimmed.
func (c *Catalog) FindByTitle(title string) (Item, bool) {
	return c.inv.first(func(it Item) bool {
		return it.Kind() == c.kind && titleMatches(it.Meta().Title, title)
	})
}

// GetAll returns the items of this catalog in insertion order.
func (c *Catalog) GetAll() []Item {
	return c.inv.OfKind(c.kind)
}

// isNilItem reports whether item is nil or wraps a nil pointer.
func isNilItem(item Item) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *Book:
		return v == nil
	case *Magazine:
		return v == nil
	}
	return false
}
