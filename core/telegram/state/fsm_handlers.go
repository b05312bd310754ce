package state

import tele "gopkg.in/telebot.v4"

// fsmHandlers maps a state to the text handler that consumes messages in it.
// States without an entry swallow text silently.
var fsmHandlers = map[State]tele.HandlerFunc{}

// RegisterHandler associates a state with its handler. Called at wiring time,
// before updates flow.
func RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	fsmHandlers[st] = h
}
