package flow

import (
	coretelegram "github.com/m3rciful/listingbot/core/telegram"
	"github.com/m3rciful/listingbot/core/telegram/commands"
	"github.com/m3rciful/listingbot/core/telegram/middleware"
	"github.com/m3rciful/listingbot/core/telegram/state"
)

// Register wires the engine's commands, callbacks, and FSM text handler into
// the registry.
func (e *Engine) Register(reg *coretelegram.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     e.HandleStart,
		Description: "Start a new listing",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     e.HandleCancel,
		Description: "Discard the current draft",
	})

	// The amount callback is gated on its state up front; the handler
	// re-checks under the vendor lock.
	amountGate := middleware.State(e.states, StateAwaitAmount)
	if err := reg.RegisterCallback(cbAmount, amountGate(e.HandleAmount)); err != nil {
		return err
	}
	if err := reg.RegisterCallback(cbConfirm, e.HandleConfirm); err != nil {
		return err
	}
	if err := reg.RegisterCallback(cbCancel, e.HandleCancel); err != nil {
		return err
	}

	state.RegisterHandler(StateCollecting, e.HandleItem)
	return nil
}
