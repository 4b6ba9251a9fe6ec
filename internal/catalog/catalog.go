// Package catalog holds the active menu version in memory.  The
// snapshot is immutable; uploading a new menu version swaps the whole
// pointer so classification always sees one consistent menu.
package catalog

import (
	"sync/atomic"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
)

// Snapshot is one immutable view of the authoritative menu: the
// version row, its items and a matcher precomputed over them.
type Snapshot struct {
	Version model.MenuVersion
	Items   []model.MenuItem
	Matcher *nlp.Matcher
}

// ItemByID looks up an item of this snapshot by its external id.
func (s *Snapshot) ItemByID(id string) (*model.MenuItem, bool) {
	return s.Matcher.ItemByID(id)
}

// Store publishes the active snapshot to every reader.  Reads are a
// single atomic pointer load; writes happen only on menu upload.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store primed with an empty menu so callers never
// see nil.
func NewStore() *Store {
	st := &Store{}
	st.current.Store(&Snapshot{Matcher: nlp.NewMatcher(nil)})
	return st
}

// Swap installs a new active menu version.
func (st *Store) Swap(version model.MenuVersion, items []model.MenuItem) {
	st.current.Store(&Snapshot{Version: version, Items: items, Matcher: nlp.NewMatcher(items)})
}

// Current returns the active snapshot.
func (st *Store) Current() *Snapshot { return st.current.Load() }
