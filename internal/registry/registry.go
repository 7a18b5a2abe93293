// Package registry holds the derivatives accepted during one verification pass.
package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/derivcheck/internal/derivative"
)

// Entry is an accepted registration. Entries are immutable once created.
type Entry struct {
	ID         string
	Key        derivative.Key
	Derivative string // Declaration ID of the derivative
	Seq        int    // Insertion order within the pass
}

// Table maps (original, subset, kind) to a derivative. It is safe for
// concurrent use; all writes are serialized.
type Table struct {
	mu      sync.RWMutex
	entries map[derivative.Key]*Entry
}

func New() *Table {
	return &Table{entries: make(map[derivative.Key]*Entry)}
}

// Register inserts decl under key unless the key is already taken, in which
// case the existing derivative is returned with ok == false.
func (t *Table) Register(key derivative.Key, decl string) (existing string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, taken := t.entries[key]; taken {
		return e.Derivative, false
	}
	t.entries[key] = &Entry{
		ID:         uuid.NewString(),
		Key:        key,
		Derivative: decl,
		Seq:        len(t.entries),
	}
	return "", true
}

// Lookup returns the derivative registered for original, subset and kind.
func (t *Table) Lookup(original string, subset derivative.Subset, kind derivative.Kind) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[derivative.NewKey(original, subset, kind)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns every entry in insertion order.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
