// Package draft stores per-vendor in-progress listing drafts.
package draft

import (
	"sync"

	"github.com/m3rciful/listingbot/listing/vendor"
)

// Draft is the mutable per-vendor record tracking an in-progress listing.
// Items is non-empty only while Expected is set, and never grows past it.
type Draft struct {
	// Expected is the item count the vendor chose; 0 means not chosen yet.
	Expected int
	// Items holds submitted item descriptions in submission order.
	Items []string
}

// Store holds one draft per vendor, created implicitly on first use.
// Safe for concurrent use; callers needing multi-step atomicity serialize
// per vendor above this layer.
type Store struct {
	mu     sync.RWMutex
	drafts map[vendor.Identity]*Draft
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{drafts: make(map[vendor.Identity]*Draft)}
}

// Get returns a copy of the vendor's draft, or an empty draft if none exists.
func (s *Store) Get(id vendor.Identity) Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.drafts[id]; ok {
		return Draft{
			Expected: d.Expected,
			Items:    append([]string(nil), d.Items...),
		}
	}
	return Draft{}
}

// SetExpected records the item count the vendor chose and discards any
// previously collected items. Range validation belongs to the caller.
func (s *Store) SetExpected(id vendor.Identity, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[id] = &Draft{Expected: n}
}

// Append adds an item to the vendor's draft and returns the collected and
// expected counts. Without an expected count the call is a no-op returning
// (0, 0): that is the defined behavior for stray text outside an active
// collection phase. A full draft is likewise left untouched.
func (s *Store) Append(id vendor.Identity, text string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok || d.Expected == 0 {
		return 0, 0
	}
	if len(d.Items) >= d.Expected {
		return len(d.Items), d.Expected
	}
	d.Items = append(d.Items, text)
	return len(d.Items), d.Expected
}

// Clear removes the vendor's draft, returning the session to its initial
// empty state.
func (s *Store) Clear(id vendor.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, id)
}
