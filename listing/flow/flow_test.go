package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/listingbot/core/telegram/state"
	"github.com/m3rciful/listingbot/listing/draft"
	"github.com/m3rciful/listingbot/listing/publish"
	"github.com/m3rciful/listingbot/listing/quota"
	"github.com/m3rciful/listingbot/listing/vendor"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements the slice of tele.Context the handlers touch. Calls to
// anything else hit the embedded nil interface and panic, which is the point.
type fakeCtx struct {
	tele.Context

	user  *tele.User
	text  string
	cb    *tele.Callback
	store map[string]any

	sent     []string
	responds []*tele.CallbackResponse
}

func (f *fakeCtx) Sender() *tele.User       { return f.user }
func (f *fakeCtx) Text() string             { return f.text }
func (f *fakeCtx) Callback() *tele.Callback { return f.cb }
func (f *fakeCtx) Chat() *tele.Chat         { return &tele.Chat{ID: f.user.ID} }
func (f *fakeCtx) Update() tele.Update      { return tele.Update{} }

func (f *fakeCtx) Get(key string) any { return f.store[key] }
func (f *fakeCtx) Set(key string, val any) {
	if f.store == nil {
		f.store = make(map[string]any)
	}
	f.store[key] = val
}

func (f *fakeCtx) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeCtx) EditOrSend(what any, _ ...any) error {
	return f.Send(what)
}

func (f *fakeCtx) Respond(resp ...*tele.CallbackResponse) error {
	f.responds = append(f.responds, resp...)
	return nil
}

func (f *fakeCtx) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeMessenger struct {
	nextID  int
	sendErr error
	sent    []string
	deleted []publish.MessageRef
}

func (m *fakeMessenger) SendText(_ context.Context, dest publish.Destination, text string) (publish.MessageRef, error) {
	if m.sendErr != nil {
		return publish.MessageRef{}, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, text)
	return publish.MessageRef{ChatID: dest.ChatID, MessageID: m.nextID}, nil
}

func (m *fakeMessenger) SendPhoto(ctx context.Context, dest publish.Destination, _, caption string) (publish.MessageRef, error) {
	return m.SendText(ctx, dest, caption)
}

func (m *fakeMessenger) Delete(_ context.Context, ref publish.MessageRef) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

var alice = &tele.User{ID: 1, Username: "alice"}

func newTestEngine(t *testing.T, limit int) (*Engine, *fakeMessenger) {
	t.Helper()

	msgr := &fakeMessenger{}
	pub := publish.New(publish.Destination{ChatID: -100}, "", &publish.Composer{
		Pick: func(int) int { return 0 },
	})
	pub.Bind(msgr)

	e, err := New(Options{
		Vendors:   vendor.ParseSet([]string{"@alice"}),
		MaxItems:  10,
		Drafts:    draft.NewStore(),
		Quota:     quota.NewKeeper(limit),
		Publisher: pub,
		States:    state.NewMemoryManager(),
		Now:       func() time.Time { return time.Date(2026, 9, 1, 15, 4, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, msgr
}

func ctxFor(u *tele.User) *fakeCtx { return &fakeCtx{user: u} }

func amountCtx(u *tele.User, payload string) *fakeCtx {
	return &fakeCtx{user: u, cb: &tele.Callback{Data: cbAmount + "|" + payload}}
}

func runFlow(t *testing.T, e *Engine, amount int, items []string) *fakeCtx {
	t.Helper()

	c := ctxFor(alice)
	if err := e.HandleStart(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.HandleAmount(amountCtx(alice, strconv.Itoa(amount))); err != nil {
		t.Fatalf("amount: %v", err)
	}
	for _, item := range items {
		ic := ctxFor(alice)
		ic.text = item
		if err := e.HandleItem(ic); err != nil {
			t.Fatalf("item %q: %v", item, err)
		}
	}
	return c
}

func TestFullListingFlow(t *testing.T) {
	e, msgr := newTestEngine(t, 2)

	runFlow(t, e, 3, []string{"one", "two", "three"})
	if st := e.states.GetState(alice.ID); st != StateAwaitConfirm {
		t.Fatalf("state after all items = %s, want %s", st, StateAwaitConfirm)
	}

	c := ctxFor(alice)
	if err := e.HandleConfirm(c); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if c.lastSent() != msgPublished {
		t.Fatalf("confirm reply = %q, want %q", c.lastSent(), msgPublished)
	}
	if len(msgr.sent) != 1 {
		t.Fatalf("channel sends = %d, want 1", len(msgr.sent))
	}
	body := msgr.sent[0]
	for _, want := range []string{"ONE", "TWO", "THREE", "⏱ 15:04", "📩 @alice"} {
		if !strings.Contains(body, want) {
			t.Fatalf("published body missing %q:\n%s", want, body)
		}
	}

	if st := e.states.GetState(alice.ID); st != state.StateIdle {
		t.Fatalf("state after publish = %s, want idle", st)
	}
	if d := e.drafts.Get(vendor.Identity("alice")); d.Expected != 0 {
		t.Fatalf("draft must be cleared after publish: %+v", d)
	}
}

func TestCollectionReachesConfirmAtBoundaryAmounts(t *testing.T) {
	for _, k := range []int{1, 10} {
		e, _ := newTestEngine(t, 2)
		items := make([]string, k)
		for i := range items {
			items[i] = fmt.Sprintf("item %d", i+1)
		}

		runFlow(t, e, k, items)

		if st := e.states.GetState(alice.ID); st != StateAwaitConfirm {
			t.Fatalf("k=%d: state = %s, want %s", k, st, StateAwaitConfirm)
		}
		d := e.drafts.Get(vendor.Identity("alice"))
		if len(d.Items) != k {
			t.Fatalf("k=%d: collected %d items", k, len(d.Items))
		}
		for i, item := range d.Items {
			if item != items[i] {
				t.Fatalf("k=%d: item %d = %q, want %q", k, i, item, items[i])
			}
		}
	}
}

func TestStartDeniesUnknownUser(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	c := ctxFor(&tele.User{ID: 99, Username: "mallory"})
	if err := e.HandleStart(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.lastSent() != msgDenied {
		t.Fatalf("reply = %q, want denial", c.lastSent())
	}
	if e.states.HasState(99) {
		t.Fatal("denied user must not enter the flow")
	}
}

func TestRestartDiscardsCollectedItems(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	runFlow(t, e, 3, []string{"one"})

	if err := e.HandleStart(ctxFor(alice)); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if st := e.states.GetState(alice.ID); st != StateAwaitAmount {
		t.Fatalf("state after restart = %s, want %s", st, StateAwaitAmount)
	}
	if d := e.drafts.Get(vendor.Identity("alice")); d.Expected != 0 || len(d.Items) != 0 {
		t.Fatalf("restart must discard the draft: %+v", d)
	}
}

func TestAmountRejectsOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	if err := e.HandleStart(ctxFor(alice)); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, payload := range []string{"0", "11", "abc", ""} {
		c := amountCtx(alice, payload)
		if err := e.HandleAmount(c); err != nil {
			t.Fatalf("amount %q: %v", payload, err)
		}
		if len(c.responds) != 1 {
			t.Fatalf("payload %q must get a corrective callback response", payload)
		}
		if st := e.states.GetState(alice.ID); st != StateAwaitAmount {
			t.Fatalf("payload %q moved state to %s", payload, st)
		}
	}
}

func TestAmountIgnoredOutsideItsState(t *testing.T) {
	e, _ := newTestEngine(t, 2)

	c := amountCtx(alice, "3")
	if err := e.HandleAmount(c); err != nil {
		t.Fatalf("amount: %v", err)
	}
	if len(c.sent) != 0 || len(c.responds) != 0 {
		t.Fatal("amount callback outside the flow must be a silent no-op")
	}
	if d := e.drafts.Get(vendor.Identity("alice")); d.Expected != 0 {
		t.Fatalf("draft must stay empty: %+v", d)
	}
}

func TestExtraTextAfterLastItemIsIgnored(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	state.RegisterHandler(StateCollecting, e.HandleItem)

	runFlow(t, e, 3, []string{"one", "two", "three"})

	// Routed the way production text is: through the FSM dispatcher. The
	// vendor is in the confirm state now, which has no text handler.
	c := ctxFor(alice)
	c.text = "four"
	if err := e.states.ManagerHandler(c); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("extra text must get no reply, got %q", c.lastSent())
	}
	if d := e.drafts.Get(vendor.Identity("alice")); len(d.Items) != 3 {
		t.Fatalf("extra text must not be collected: %v", d.Items)
	}
}

func TestQuotaDenialKeepsSession(t *testing.T) {
	e, msgr := newTestEngine(t, 1)

	runFlow(t, e, 3, []string{"one", "two", "three"})
	if err := e.HandleConfirm(ctxFor(alice)); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	runFlow(t, e, 3, []string{"x", "y", "z"})
	c := ctxFor(alice)
	if err := e.HandleConfirm(c); err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if !strings.Contains(c.lastSent(), "Limit of 1") {
		t.Fatalf("reply = %q, want quota denial", c.lastSent())
	}
	if len(msgr.sent) != 1 {
		t.Fatalf("denied confirm must not publish, sends = %d", len(msgr.sent))
	}
	if st := e.states.GetState(alice.ID); st != StateAwaitConfirm {
		t.Fatalf("denied confirm must keep the state, got %s", st)
	}
	if d := e.drafts.Get(vendor.Identity("alice")); len(d.Items) != 3 {
		t.Fatalf("denied confirm must keep the draft: %v", d.Items)
	}
}

func TestSendFailureKeepsSessionForRetry(t *testing.T) {
	e, msgr := newTestEngine(t, 2)

	runFlow(t, e, 3, []string{"one", "two", "three"})

	msgr.sendErr = errors.New("bad gateway")
	c := ctxFor(alice)
	if err := e.HandleConfirm(c); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if c.lastSent() != msgPublishFailed {
		t.Fatalf("reply = %q, want %q", c.lastSent(), msgPublishFailed)
	}
	if st := e.states.GetState(alice.ID); st != StateAwaitConfirm {
		t.Fatalf("failed send must keep the state, got %s", st)
	}

	// The retry publishes without re-collecting anything.
	msgr.sendErr = nil
	retry := ctxFor(alice)
	if err := e.HandleConfirm(retry); err != nil {
		t.Fatalf("retry confirm: %v", err)
	}
	if retry.lastSent() != msgPublished {
		t.Fatalf("retry reply = %q, want %q", retry.lastSent(), msgPublished)
	}
	if len(msgr.sent) != 1 {
		t.Fatalf("retry sends = %d, want 1", len(msgr.sent))
	}
}

func TestSecondListingReplacesFirst(t *testing.T) {
	e, msgr := newTestEngine(t, 2)

	runFlow(t, e, 3, []string{"one", "two", "three"})
	if err := e.HandleConfirm(ctxFor(alice)); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	runFlow(t, e, 3, []string{"x", "y", "z"})
	if err := e.HandleConfirm(ctxFor(alice)); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	if len(msgr.deleted) != 1 || msgr.deleted[0].MessageID != 1 {
		t.Fatalf("second publication must delete the first message, deleted %v", msgr.deleted)
	}
	if len(msgr.sent) != 2 {
		t.Fatalf("channel sends = %d, want 2", len(msgr.sent))
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	e, msgr := newTestEngine(t, 2)

	runFlow(t, e, 3, []string{"one"})

	c := ctxFor(alice)
	if err := e.HandleCancel(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.lastSent() != msgCancelled {
		t.Fatalf("reply = %q, want %q", c.lastSent(), msgCancelled)
	}
	if e.states.HasState(alice.ID) {
		t.Fatal("cancel must clear the state")
	}
	if d := e.drafts.Get(vendor.Identity("alice")); d.Expected != 0 || len(d.Items) != 0 {
		t.Fatalf("cancel must clear the draft: %+v", d)
	}
	if len(msgr.sent) != 0 {
		t.Fatal("cancel must not publish")
	}
}

func TestConfirmWithIncompleteDraftResets(t *testing.T) {
	e, msgr := newTestEngine(t, 2)

	runFlow(t, e, 3, []string{"one"})
	// Force the confirm state without the full item set.
	e.states.SetState(alice.ID, StateAwaitConfirm)

	c := ctxFor(alice)
	if err := e.HandleConfirm(c); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(msgr.sent) != 0 {
		t.Fatal("inconsistent draft must not publish")
	}
	if e.states.HasState(alice.ID) {
		t.Fatal("inconsistent draft must reset the state")
	}
}
