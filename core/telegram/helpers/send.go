package helpers

import tele "gopkg.in/telebot.v4"

// EditOrSend replaces the message a callback originated from, falling back to
// a fresh message when there is nothing to edit (for command-driven calls).
// Plain text; listing bodies carry their own send options in the publisher.
func EditOrSend(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	if len(markup) > 0 && markup[0] != nil {
		return c.EditOrSend(text, markup[0])
	}
	return c.EditOrSend(text)
}
