package publish

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/listingbot/listing/stylize"
	"github.com/m3rciful/listingbot/listing/vendor"
)

const id = vendor.Identity("alice")

type fakeMessenger struct {
	nextID    int
	sendErr   error
	deleteErr error

	sent    []string
	photos  []string
	deleted []MessageRef
}

func (f *fakeMessenger) SendText(_ context.Context, dest Destination, text string) (MessageRef, error) {
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, text)
	return MessageRef{ChatID: dest.ChatID, MessageID: f.nextID}, nil
}

func (f *fakeMessenger) SendPhoto(_ context.Context, dest Destination, photoURL, caption string) (MessageRef, error) {
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.nextID++
	f.photos = append(f.photos, photoURL)
	f.sent = append(f.sent, caption)
	return MessageRef{ChatID: dest.ChatID, MessageID: f.nextID}, nil
}

func (f *fakeMessenger) Delete(_ context.Context, ref MessageRef) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func newPublisher(photoURL string) (*Publisher, *fakeMessenger) {
	c := &Composer{
		Table:   stylize.Table{"a": "Å"},
		Banners: []string{"~~~"},
		Bullet:  "•",
		Footer:  "DM to order",
	}
	p := New(Destination{ChatID: -100}, photoURL, c)
	m := &fakeMessenger{}
	p.Bind(m)
	return p, m
}

func TestPublishReplacesPreviousListing(t *testing.T) {
	p, m := newPublisher("")
	now := time.Date(2026, 9, 1, 15, 4, 0, 0, time.UTC)

	first, err := p.Publish(context.Background(), id, "alice", []string{"one"}, now)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if len(m.deleted) != 0 {
		t.Fatalf("first publish must not delete anything, deleted %v", m.deleted)
	}

	second, err := p.Publish(context.Background(), id, "alice", []string{"two"}, now)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if len(m.deleted) != 1 || m.deleted[0] != first {
		t.Fatalf("second publish must delete the first message, deleted %v", m.deleted)
	}
	if ref, ok := p.LastRef(id); !ok || ref != second {
		t.Fatalf("LastRef = %v/%v, want %v", ref, ok, second)
	}
}

func TestPublishSurvivesDeleteFailure(t *testing.T) {
	p, m := newPublisher("")
	now := time.Now()

	if _, err := p.Publish(context.Background(), id, "alice", []string{"one"}, now); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	m.deleteErr = errors.New("message to delete not found")
	ref, err := p.Publish(context.Background(), id, "alice", []string{"two"}, now)
	if err != nil {
		t.Fatalf("delete failure must not fail publication: %v", err)
	}
	if got, _ := p.LastRef(id); got != ref {
		t.Fatalf("new reference must be recorded despite delete failure")
	}
}

func TestPublishSendFailureKeepsPreviousRef(t *testing.T) {
	p, m := newPublisher("")
	now := time.Now()

	first, err := p.Publish(context.Background(), id, "alice", []string{"one"}, now)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}

	m.sendErr = errors.New("bad gateway")
	if _, err := p.Publish(context.Background(), id, "alice", []string{"two"}, now); err == nil {
		t.Fatal("send failure must surface an error")
	}
	if ref, ok := p.LastRef(id); !ok || ref != first {
		t.Fatalf("failed send must keep the previous reference, got %v/%v", ref, ok)
	}
}

func TestPublishUnboundTransport(t *testing.T) {
	p := New(Destination{ChatID: -100}, "", &Composer{})
	if _, err := p.Publish(context.Background(), id, "alice", []string{"one"}, time.Now()); err == nil {
		t.Fatal("publish without a bound transport must fail")
	}
}

func TestPublishUsesPhotoWhenConfigured(t *testing.T) {
	p, m := newPublisher("https://example.com/banner.jpg")
	if _, err := p.Publish(context.Background(), id, "alice", []string{"one"}, time.Now()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(m.photos) != 1 || m.photos[0] != "https://example.com/banner.jpg" {
		t.Fatalf("photo URL not sent: %v", m.photos)
	}
}

func TestComposeLayout(t *testing.T) {
	c := &Composer{
		Table:   stylize.Table{"a": "Å"},
		Banners: []string{"first", "second"},
		Bullet:  "•",
		Footer:  "DM to order",
		Pick:    func(int) int { return 1 },
	}
	now := time.Date(2026, 9, 1, 15, 4, 0, 0, time.UTC)

	body := c.Compose("alice", []string{"apples", "pears"}, now)

	if !strings.HasPrefix(body, "second\n\n") {
		t.Fatalf("banner missing or wrong pick:\n%s", body)
	}
	if !strings.Contains(body, "⏱ 15:04") {
		t.Fatalf("timestamp missing:\n%s", body)
	}
	if !strings.Contains(body, "• ÅPPLES\n") || !strings.Contains(body, "• PEÅRS\n") {
		t.Fatalf("stylized item lines missing:\n%s", body)
	}
	if !strings.Contains(body, "📩 @alice") {
		t.Fatalf("contact footer missing:\n%s", body)
	}
	if !strings.HasSuffix(body, "DM to order") {
		t.Fatalf("custom footer missing:\n%s", body)
	}
}

func TestComposeItemIcons(t *testing.T) {
	c := &Composer{
		Bullet: "•",
		Icons: map[string]string{
			"tea":       "🍵",
			"green tea": "🌿",
		},
	}
	now := time.Date(2026, 9, 1, 15, 4, 0, 0, time.UTC)

	body := c.Compose("alice", []string{"Green Tea 50g", "black tea", "coffee"}, now)

	// Longer keyword wins for the more specific item.
	if !strings.Contains(body, "🌿 GREEN TEA 50G\n") {
		t.Fatalf("specific keyword icon missing:\n%s", body)
	}
	if !strings.Contains(body, "🍵 BLACK TEA\n") {
		t.Fatalf("keyword icon missing:\n%s", body)
	}
	if !strings.Contains(body, "• COFFEE\n") {
		t.Fatalf("unmatched item must fall back to the bullet:\n%s", body)
	}
}

func TestComposeEscapesMarkdown(t *testing.T) {
	c := &Composer{}
	body := c.Compose("alice", []string{"a_b*c"}, time.Now())
	if !strings.Contains(body, `A\_B\*C`) {
		t.Fatalf("markdown specials must be escaped:\n%s", body)
	}
}

func TestComposeWithoutBanner(t *testing.T) {
	c := &Composer{}
	now := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	body := c.Compose("alice", []string{"one"}, now)
	if !strings.HasPrefix(body, "⏱ 09:30") {
		t.Fatalf("empty banner list must start at the timestamp:\n%s", body)
	}
}
