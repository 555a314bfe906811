package library

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemString(t *testing.T) {
	b := NewBook(1, "Libro 1", 2000, "Autor 1", "Género 1")
	assert.Equal(t, "ID: 1, Title: Libro 1, Publication Year: 2000, Author: Autor 1, Genre: Género 1", b.String())

	m := NewMagazine(3, "Revista 1", 2010, 1, "Tema 1")
	assert.Equal(t, "ID: 3, Title: Revista 1, Publication Year: 2010, Edition Number: 1, Topics: Tema 1", m.String())

	m.Title = "Revista 1b"
	assert.Equal(t, "Revista 1b", m.Meta().Title)
}

func newCatalogs(t *testing.T) (*Inventory, *Catalog, *Catalog) {
	t.Helper()
	inv := NewInventory(nil)
	return inv, NewCatalog(KindBook, inv), NewCatalog(KindMagazine, inv)
}

func TestCatalogAddKeepsInsertionOrder(t *testing.T) {
	inv, books, mags := newCatalogs(t)

	require.True(t, books.Add(NewBook(1, "B1", 2000, "A", "G")))
	require.True(t, mags.Add(NewMagazine(2, "M1", 2001, 1, "T")))
	require.True(t, books.Add(NewBook(3, "B2", 2002, "A", "G")))

	assert.Equal(t, []int{1, 3}, ids(books.GetAll()))
	assert.Equal(t, []int{2}, ids(mags.GetAll()))
	assert.Equal(t, []int{1, 2, 3}, ids(inv.All()))
}

func TestCatalogAddAllowsDuplicateTitles(t *testing.T) {
	_, books, _ := newCatalogs(t)

	assert.True(t, books.Add(NewBook(1, "Same", 2000, "A", "G")))
	assert.True(t, books.Add(NewBook(2, "Same", 2001, "B", "G")))
	assert.Len(t, books.GetAll(), 2)
}

func TestCatalogAddRejectsDuplicateIDAndWrongKind(t *testing.T) {
	inv, books, mags := newCatalogs(t)

	require.True(t, books.Add(NewBook(1, "B1", 2000, "A", "G")))
	assert.False(t, mags.Add(NewMagazine(1, "M1", 2001, 1, "T")), "id is unique across kinds")
	assert.False(t, books.Add(NewMagazine(2, "M2", 2001, 1, "T")), "magazine in book catalog")
	assert.False(t, books.Add(nil))
	assert.Equal(t, 1, inv.Len())
}

func TestCatalogSearchIsExact(t *testing.T) {
	_, books, _ := newCatalogs(t)
	book := NewBook(1, "Libro 1", 2000, "Autor 1", "Género 1")
	require.True(t, books.Add(book))

	found, ok := books.Search("Libro 1")
	require.True(t, ok)
	assert.Same(t, book, found)

	_, ok = books.Search("libro 1")
	assert.False(t, ok, "exact search is case-sensitive")
	_, ok = books.Search(" Libro 1 ")
	assert.False(t, ok, "exact search is untrimmed")

	found, ok = books.FindByTitle("  libro 1 ")
	require.True(t, ok)
	assert.Same(t, book, found)
}

func TestCatalogSearchOnlySeesItsKind(t *testing.T) {
	_, books, mags := newCatalogs(t)
	require.True(t, mags.Add(NewMagazine(1, "Shared", 2000, 1, "T")))

	_, ok := books.Search("Shared")
	assert.False(t, ok)
	_, ok = books.FindByTitle("shared")
	assert.False(t, ok)
	_, ok = books.Get(1)
	assert.False(t, ok)
	_, ok = mags.Get(1)
	assert.True(t, ok)
}

func TestCatalogRemoveDropsFromAllItems(t *testing.T) {
	inv, books, _ := newCatalogs(t)
	book := NewBook(1, "Libro 1", 2000, "Autor 1", "Género 1")
	require.True(t, books.Add(book))
	require.True(t, books.Add(NewBook(2, "Libro 2", 2005, "Autor 2", "Género 2")))

	assert.True(t, books.Remove(book))

	_, ok := books.Get(1)
	assert.False(t, ok)
	_, ok = inv.Get(1)
	assert.False(t, ok)
	assert.Equal(t, []int{2}, ids(inv.All()))

	assert.False(t, books.Remove(book), "second remove is a no-op")
}

func TestCatalogRemoveIgnoresOtherKind(t *testing.T) {
	inv, books, mags := newCatalogs(t)
	mag := NewMagazine(1, "M", 2000, 1, "T")
	require.True(t, mags.Add(mag))

	assert.False(t, books.Remove(mag))
	assert.False(t, books.Remove(NewBook(1, "M", 2000, "A", "G")), "same id, other kind")
	assert.Equal(t, 1, inv.Len())
	_, ok := mags.Get(1)
	assert.True(t, ok)
}

func TestCatalogRemoveConcurrent(t *testing.T) {
	inv, books, mags := newCatalogs(t)
	require.True(t, books.Add(NewBook(1, "B", 2000, "A", "G")))
	require.True(t, mags.Add(NewMagazine(2, "M", 2000, 1, "T")))

	var (
		wg      sync.WaitGroup
		removed atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if books.Remove(NewBook(1, "B", 2000, "A", "G")) {
				removed.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if books.Remove(NewBook(2, "M", 2000, "A", "G")) {
				removed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), removed.Load())
	assert.Equal(t, []int{2}, ids(inv.All()))
}

func TestCatalogAddRejectsNil(t *testing.T) {
	inv, books, mags := newCatalogs(t)

	assert.False(t, books.Add(nil))
	assert.False(t, books.Add((*Book)(nil)))
	assert.False(t, mags.Add((*Magazine)(nil)))
	assert.False(t, inv.Add((*Book)(nil)))
	assert.False(t, books.Remove((*Book)(nil)))
	assert.Zero(t, inv.Len())
}

func TestCatalogRemoveByTitle(t *testing.T) {
	inv, books, _ := newCatalogs(t)
	require.True(t, books.Add(NewBook(1, "Libro 1", 2000, "Autor 1", "Género 1")))

	removed, ok := books.RemoveByTitle(" LIBRO 1")
	require.True(t, ok)
	assert.Equal(t, 1, removed.Meta().ID)
	assert.Zero(t, inv.Len())

	_, ok = books.RemoveByTitle("Libro 1")
	assert.False(t, ok)
}

func TestInventoryFindByTitleAcrossKinds(t *testing.T) {
	inv, books, mags := newCatalogs(t)
	require.True(t, books.Add(NewBook(1, "Libro 1", 2000, "A", "G")))
	require.True(t, mags.Add(NewMagazine(2, "Revista 1", 2000, 1, "T")))

	it, ok := inv.FindByTitle("revista 1")
	require.True(t, ok)
	assert.Equal(t, KindMagazine, it.Kind())

	_, ok = inv.FindByTitle("missing")
	assert.False(t, ok)
}

func ids(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Meta().ID
	}
	return out
}
