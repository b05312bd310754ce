package flow

import (
	"sync"

	"github.com/m3rciful/listingbot/listing/vendor"
)

// keyedLocks serializes state transitions per vendor without a global lock
// across vendors.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[vendor.Identity]*sync.Mutex
}

func newKeyedLocks() keyedLocks {
	return keyedLocks{locks: make(map[vendor.Identity]*sync.Mutex)}
}

// acquire locks the vendor's mutex and returns its release function.
func (k *keyedLocks) acquire(id vendor.Identity) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
