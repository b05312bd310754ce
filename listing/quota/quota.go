// Package quota enforces the per-vendor daily posting limit over a rolling
// 24h window.
package quota

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/listingbot/core/logger"
	"github.com/m3rciful/listingbot/listing/vendor"
)

// ErrLimitReached is returned by Admit when the vendor has exhausted the
// posting quota for the current window.
var ErrLimitReached = errors.New("quota: daily limit reached")

// Window is the rolling period a vendor's publish count is bounded over.
const Window = 24 * time.Hour

type record struct {
	windowStart time.Time
	count       int
}

// Keeper tracks one quota record per vendor. All methods are safe for
// concurrent use; admission and increment are deliberately separate steps so
// a denied admission never consumes quota.
type Keeper struct {
	mu      sync.Mutex
	limit   int
	records map[vendor.Identity]*record
}

// NewKeeper constructs a Keeper with the given per-window limit.
func NewKeeper(limit int) *Keeper {
	if limit <= 0 {
		limit = 2
	}
	return &Keeper{
		limit:   limit,
		records: make(map[vendor.Identity]*record),
	}
}

// Limit returns the configured per-window posting limit.
func (k *Keeper) Limit() int {
	return k.limit
}

// Admit decides whether the vendor may publish at the given instant.
// A missing record counts as a fresh window; a record older than the window
// is reset before the decision. Admit never increments the counter.
func (k *Keeper) Admit(id vendor.Identity, now time.Time) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	rec, ok := k.records[id]
	if !ok {
		return nil
	}
	if now.Sub(rec.windowStart) >= Window {
		rec.windowStart = now
		rec.count = 0
		return nil
	}
	if rec.count >= k.limit {
		if logger.Quota != nil {
			logger.Quota.LogAttrs(logger.Background(), slog.LevelWarn, "quota.denied",
				slog.String("event", "admit"),
				slog.String("status", "denied"),
				slog.String("vendor", string(id)),
				slog.Int("quota_count", rec.count),
				slog.Int("quota_limit", k.limit),
			)
		}
		return ErrLimitReached
	}
	return nil
}

// RecordPost counts one publication against the vendor's current window.
// Callers must invoke it exactly once per successful publication, after Admit.
func (k *Keeper) RecordPost(id vendor.Identity, now time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()

	rec, ok := k.records[id]
	if !ok || now.Sub(rec.windowStart) >= Window {
		k.records[id] = &record{windowStart: now, count: 1}
		return
	}
	rec.count++
}

// Count reports the vendor's publish count inside the current window.
func (k *Keeper) Count(id vendor.Identity, now time.Time) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	rec, ok := k.records[id]
	if !ok || now.Sub(rec.windowStart) >= Window {
		return 0
	}
	return rec.count
}
