package flow

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/listingbot/core/logger"
	"github.com/m3rciful/listingbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/listingbot/core/telegram/helpers"
	"github.com/m3rciful/listingbot/core/telegram/keyboard"
	"github.com/m3rciful/listingbot/listing/vendor"

	tele "gopkg.in/telebot.v4"
)

const (
	msgDenied        = "❌ You are not allowed to post listings."
	msgFirstItem     = "Send the first item:"
	msgNextItem      = "Next item:"
	msgConfirm       = "Publish this listing?"
	msgPublished     = "✅ Listing published."
	msgPublishFailed = "⚠️ Publishing failed, nothing was posted. Your draft is kept — try confirming again."
	msgCancelled     = "Cancelled. Send /start to begin a new listing."

	btnConfirm = "✅ PUBLISH"
	btnCancel  = "❌ CANCEL"
)

// HandleStart begins (or restarts) the listing flow: it clears any draft and
// presents the amount keyboard. Unauthorized users get an explicit denial and
// no state is touched.
func (e *Engine) HandleStart(c tele.Context) error {
	u := c.Sender()
	ctx := tghelpers.WithHandler(c, "listing.start")
	if !e.vendors.Allows(u) {
		logger.Warn(ctx, "listing.flow", "auth.denied",
			slog.String("status", "denied"),
			slog.String("handler", "listing.start"),
		)
		return c.Send(msgDenied)
	}

	id := vendor.FromUser(u)
	defer e.locks.acquire(id)()

	e.drafts.Clear(id)
	e.states.SetState(u.ID, StateAwaitAmount)

	logger.Info(ctx, "listing.flow", "flow.start",
		slog.String("status", "ok"),
		slog.String("vendor", string(id)),
		slog.String("state", string(StateAwaitAmount)),
	)
	prompt := fmt.Sprintf("How many items are you listing? (1–%d)", e.maxItems)
	return c.Send(prompt, e.amountKeyboard())
}

// HandleAmount consumes the amount-selection callback. Out-of-range or
// malformed payloads are rejected without touching the session.
func (e *Engine) HandleAmount(c tele.Context) error {
	u := c.Sender()
	if !e.vendors.Allows(u) {
		return nil
	}
	id := vendor.FromUser(u)
	defer e.locks.acquire(id)()

	if e.states.GetState(u.ID) != StateAwaitAmount {
		return nil
	}

	ctx := tghelpers.WithHandler(c, "listing.amount")
	n, err := callbacks.PayloadInt(c)
	if err != nil || n < 1 || n > e.maxItems {
		logger.Debug(ctx, "listing.flow", "amount.invalid",
			slog.String("status", "skip"),
			slog.String("vendor", string(id)),
			slog.String("payload", callbacks.CallbackPayload(c)),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Pick a number from the keyboard."})
	}

	e.drafts.SetExpected(id, n)
	e.states.SetState(u.ID, StateCollecting)

	logger.Info(ctx, "listing.flow", "amount.chosen",
		slog.String("status", "ok"),
		slog.String("vendor", string(id)),
		slog.Int("amount", n),
		slog.String("state", string(StateCollecting)),
	)
	return tghelpers.EditOrSend(c, msgFirstItem)
}

// HandleItem collects one item description. It is registered for the
// collecting state only, so text in any other state never reaches it.
func (e *Engine) HandleItem(c tele.Context) error {
	u := c.Sender()
	if !e.vendors.Allows(u) {
		return nil
	}
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	id := vendor.FromUser(u)
	defer e.locks.acquire(id)()

	collected, expected := e.drafts.Append(id, text)
	if expected == 0 {
		// Stray message with no active collection; defined as a silent no-op.
		return nil
	}

	ctx := tghelpers.WithHandler(c, "listing.item")
	logger.Debug(ctx, "listing.flow", "item.collected",
		slog.String("status", "ok"),
		slog.String("vendor", string(id)),
		slog.Int("item_count", collected),
		slog.Int("amount", expected),
	)

	if collected < expected {
		return c.Send(msgNextItem)
	}

	e.states.SetState(u.ID, StateAwaitConfirm)
	return c.Send(msgConfirm, confirmKeyboard())
}

// HandleConfirm publishes the collected listing if the daily quota admits it.
// A quota denial or a failed send leaves the draft and state untouched so the
// vendor can retry or cancel explicitly.
func (e *Engine) HandleConfirm(c tele.Context) error {
	u := c.Sender()
	if !e.vendors.Allows(u) {
		return nil
	}
	id := vendor.FromUser(u)
	defer e.locks.acquire(id)()

	if e.states.GetState(u.ID) != StateAwaitConfirm {
		return nil
	}

	ctx := tghelpers.WithHandler(c, "listing.confirm")
	d := e.drafts.Get(id)
	if d.Expected == 0 || len(d.Items) < d.Expected {
		logger.Warn(ctx, "listing.flow", "confirm.inconsistent",
			slog.String("status", "skip"),
			slog.String("vendor", string(id)),
			slog.Int("item_count", len(d.Items)),
			slog.Int("amount", d.Expected),
		)
		e.states.ClearState(u.ID)
		return nil
	}

	now := e.now()
	if err := e.quota.Admit(id, now); err != nil {
		logger.Info(ctx, "listing.flow", "confirm.quota",
			slog.String("status", "denied"),
			slog.String("vendor", string(id)),
			slog.Int("quota_limit", e.quota.Limit()),
		)
		// Send, not edit: the confirm keyboard stays usable for a later
		// retry or an explicit cancel.
		return c.Send(fmt.Sprintf("Limit of %d listings per day reached.", e.quota.Limit()))
	}

	if _, err := e.pub.Publish(ctx, id, contactOf(u), d.Items, now); err != nil {
		// Draft and state stay put: the vendor retries confirmation
		// without re-collecting items.
		return c.Send(msgPublishFailed)
	}

	e.quota.RecordPost(id, now)
	e.drafts.Clear(id)
	e.states.ClearState(u.ID)

	summary, _ := logger.SummarizeStrings(d.Items, 3)
	logger.Info(ctx, "listing.flow", "flow.published",
		slog.String("status", "ok"),
		slog.String("vendor", string(id)),
		slog.Int("item_count", len(d.Items)),
		slog.String("items", logger.SanitizeLimit(summary, 128)),
	)
	return tghelpers.EditOrSend(c, msgPublished)
}

// HandleCancel discards the vendor's draft from any state. Wired both to the
// cancel button and the /cancel command.
func (e *Engine) HandleCancel(c tele.Context) error {
	u := c.Sender()
	if !e.vendors.Allows(u) {
		return nil
	}
	id := vendor.FromUser(u)
	defer e.locks.acquire(id)()

	e.drafts.Clear(id)
	e.states.ClearState(u.ID)

	ctx := tghelpers.WithHandler(c, "listing.cancel")
	logger.Info(ctx, "listing.flow", "flow.cancelled",
		slog.String("status", "cancelled"),
		slog.String("vendor", string(id)),
	)
	return tghelpers.EditOrSend(c, msgCancelled)
}

func (e *Engine) amountKeyboard() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, e.maxItems)
	for i := 1; i <= e.maxItems; i++ {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   strconv.Itoa(i),
			Unique: cbAmount,
			Data:   strconv.Itoa(i),
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 5)
}

func confirmKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: btnConfirm, Unique: cbConfirm},
		{Text: btnCancel, Unique: cbCancel},
	})
}

// contactOf returns the public contact handle shown in the listing footer.
func contactOf(u *tele.User) string {
	if u.Username != "" {
		return vendor.Normalize(u.Username)
	}
	return strconv.FormatInt(u.ID, 10)
}
