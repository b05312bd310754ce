// Package publish composes listing messages and posts them into the shared
// channel, retiring the vendor's previous listing on the way.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/listingbot/core/logger"
	"github.com/m3rciful/listingbot/listing/vendor"
)

// MessageRef identifies a live listing message in the shared channel.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Destination is the shared channel (and optional forum topic) listings go to.
type Destination struct {
	ChatID  int64
	TopicID int
}

// Messenger is the slice of the chat transport the publisher needs.
// Implementations must treat Delete failures as reportable, not fatal.
type Messenger interface {
	SendText(ctx context.Context, dest Destination, text string) (MessageRef, error)
	SendPhoto(ctx context.Context, dest Destination, photoURL, caption string) (MessageRef, error)
	Delete(ctx context.Context, ref MessageRef) error
}

// Publisher posts composed listings and tracks the single live message per
// vendor. The transport is bound once the bot is up; everything else is set
// at construction.
type Publisher struct {
	dest     Destination
	photoURL string
	composer *Composer

	mu   sync.Mutex
	msgr Messenger
	last map[vendor.Identity]MessageRef
}

// New constructs a Publisher without a bound transport.
func New(dest Destination, photoURL string, composer *Composer) *Publisher {
	return &Publisher{
		dest:     dest,
		photoURL: photoURL,
		composer: composer,
		last:     make(map[vendor.Identity]MessageRef),
	}
}

// Bind attaches the outbound transport. Called once the bot is constructed,
// before updates are processed.
func (p *Publisher) Bind(m Messenger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgr = m
}

// LastRef returns the vendor's live listing reference, if any.
func (p *Publisher) LastRef(id vendor.Identity) (MessageRef, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ref, ok := p.last[id]
	return ref, ok
}

// Publish composes the listing, best-effort deletes the vendor's previous
// message, sends the new one, and stores its reference. On a send failure
// nothing is recorded: the previous reference stays in place so a retry still
// targets the right message for replacement.
func (p *Publisher) Publish(ctx context.Context, id vendor.Identity, contact string, items []string, now time.Time) (MessageRef, error) {
	p.mu.Lock()
	msgr := p.msgr
	prev, hadPrev := p.last[id]
	p.mu.Unlock()

	if msgr == nil {
		return MessageRef{}, fmt.Errorf("publish: transport not bound")
	}

	body := p.composer.Compose(contact, items, now)

	if hadPrev {
		if err := msgr.Delete(ctx, prev); err != nil {
			// Already deleted, too old, or permissions revoked; the new
			// publication proceeds regardless.
			logger.Warn(ctx, "listing.publish", "delete.previous",
				slog.String("status", "fail"),
				slog.String("vendor", string(id)),
				slog.Int("prev_message_id", prev.MessageID),
				slog.String("err", err.Error()),
			)
		}
	}

	var (
		ref MessageRef
		err error
	)
	if p.photoURL != "" {
		ref, err = msgr.SendPhoto(ctx, p.dest, p.photoURL, body)
	} else {
		ref, err = msgr.SendText(ctx, p.dest, body)
	}
	if err != nil {
		logger.Error(ctx, "listing.publish", "send",
			slog.String("status", "fail"),
			slog.String("vendor", string(id)),
			slog.Int("item_count", len(items)),
			slog.String("err", err.Error()),
		)
		return MessageRef{}, fmt.Errorf("publish: send listing: %w", err)
	}

	p.mu.Lock()
	p.last[id] = ref
	p.mu.Unlock()

	logger.Info(ctx, "listing.publish", "published",
		slog.String("status", "ok"),
		slog.String("vendor", string(id)),
		slog.Int("item_count", len(items)),
		slog.Int("message_id", ref.MessageID),
	)
	return ref, nil
}
