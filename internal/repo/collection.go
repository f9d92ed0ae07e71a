// Package repo owns the entity collections and their CRUD operations.
// Each repository holds one collection in memory and persists the whole
// collection on every mutation.
package repo

import (
	"log/slog"

	"github.com/conorfennell/studydesk/internal/domain"
	"github.com/conorfennell/studydesk/internal/storage"
)

// Storage keys, one per entity kind.
const (
	KeySubjects = "subjects"
	KeyTasks    = "tasks"
	KeyExams    = "exams"
	KeyNotes    = "notes"
	KeyGoals    = "goals"
	KeyEvents   = "events"
)

// CollectionKeys lists every storage key in a stable order.
var CollectionKeys = []string{KeySubjects, KeyTasks, KeyExams, KeyNotes, KeyGoals, KeyEvents}

// Collection is the generic array-with-persistence backing every repository.
// Records keep insertion order; order carries no meaning beyond that.
type Collection[T domain.Entity] struct {
	store *storage.Store
	key   string
	items []T
}

// NewCollection loads the collection stored under key. Missing or corrupt
// data yields an empty collection.
func NewCollection[T domain.Entity](store *storage.Store, key string) *Collection[T] {
	return &Collection[T]{
		store: store,
		key:   key,
		items: storage.LoadCollection[T](store, key),
	}
}

// Add appends the entity and persists. The caller assigns the id.
func (c *Collection[T]) Add(item T) T {
	c.items = append(c.items, item)
	c.persist()
	return item
}

// Update replaces the record whose id matches item's id. An unknown id is a
// silent no-op, mirroring replace-by-id over an array.
func (c *Collection[T]) Update(item T) {
	for i := range c.items {
		if c.items[i].EntityID() == item.EntityID() {
			c.items[i] = item
			c.persist()
			return
		}
	}
}

// Delete removes the record with the given id if present.
func (c *Collection[T]) Delete(id string) {
	for i := range c.items {
		if c.items[i].EntityID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist()
			return
		}
	}
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// List returns the collection in insertion order. The returned slice is a
// copy; mutating it does not touch the repository.
func (c *Collection[T]) List() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// ReplaceAll swaps the entire collection and persists. Used by the cascade
// delete, which filters dependents in one pass.
func (c *Collection[T]) ReplaceAll(items []T) {
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.persist()
}

// persist writes the collection through the store adapter. A failed save is
// logged and absorbed: the in-memory state stays authoritative and later
// mutations retry the write.
func (c *Collection[T]) persist() {
	if err := storage.SaveCollection(c.store, c.key, c.items); err != nil {
		slog.Error("failed to persist collection", "key", c.key, "error", err)
	}
}
