// Package flow implements the vendor listing conversation: amount selection,
// item collection, confirmation, and publication.
package flow

import (
	"fmt"
	"time"

	"github.com/m3rciful/listingbot/core/telegram/state"
	"github.com/m3rciful/listingbot/listing/draft"
	"github.com/m3rciful/listingbot/listing/publish"
	"github.com/m3rciful/listingbot/listing/quota"
	"github.com/m3rciful/listingbot/listing/vendor"
)

// Conversation states. Only the collecting state has a text handler, so text
// sent in any other state falls through the FSM untouched.
const (
	// StateAwaitAmount means the amount keyboard was shown and no count chosen yet.
	StateAwaitAmount state.State = "listing_await_amount"
	// StateCollecting means the vendor is submitting item descriptions.
	StateCollecting state.State = "listing_collecting"
	// StateAwaitConfirm means all items are in and the confirm keyboard was shown.
	StateAwaitConfirm state.State = "listing_await_confirm"
)

// Callback uniques used by the inline keyboards.
const (
	cbAmount  = "listing_amount"
	cbConfirm = "listing_confirm"
	cbCancel  = "listing_cancel"
)

// Options wires the engine's collaborators.
type Options struct {
	Vendors   vendor.Set
	MaxItems  int
	Drafts    *draft.Store
	Quota     *quota.Keeper
	Publisher *publish.Publisher
	States    state.Manager

	// Now is the clock used for quota windows and listing timestamps;
	// nil means time.Now.
	Now func() time.Time
}

// Engine drives the per-vendor listing state machine. All transitions for a
// given vendor run under that vendor's lock; vendors never block each other.
type Engine struct {
	vendors  vendor.Set
	maxItems int
	drafts   *draft.Store
	quota    *quota.Keeper
	pub      *publish.Publisher
	states   state.Manager
	now      func() time.Time

	locks keyedLocks
}

// New constructs the workflow engine.
func New(opts Options) (*Engine, error) {
	if opts.Drafts == nil || opts.Quota == nil || opts.Publisher == nil || opts.States == nil {
		return nil, fmt.Errorf("flow: missing collaborator")
	}
	if opts.Vendors.Len() == 0 {
		return nil, fmt.Errorf("flow: empty vendor set")
	}
	maxItems := opts.MaxItems
	if maxItems <= 0 || maxItems > 10 {
		maxItems = 10
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		vendors:  opts.Vendors,
		maxItems: maxItems,
		drafts:   opts.Drafts,
		quota:    opts.Quota,
		pub:      opts.Publisher,
		states:   opts.States,
		now:      now,
		locks:    newKeyedLocks(),
	}, nil
}

// States returns the FSM manager, exposed for route wiring.
func (e *Engine) States() state.Manager {
	return e.states
}
