package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a bot command to its handler and menu metadata. AdminOnly
// commands are wrapped with the admin gate at wiring time; Hidden ones are
// kept out of the Telegram command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
