package publish

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// botMessenger adapts a telebot bot to the Messenger interface.
type botMessenger struct {
	bot *tele.Bot
}

// NewBotMessenger wraps a telebot bot as the publisher transport.
func NewBotMessenger(bot *tele.Bot) Messenger {
	return &botMessenger{bot: bot}
}

func sendOptions(dest Destination) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode: tele.ModeMarkdown,
		ThreadID:  dest.TopicID,
	}
}

func (m *botMessenger) SendText(_ context.Context, dest Destination, text string) (MessageRef, error) {
	msg, err := m.bot.Send(tele.ChatID(dest.ChatID), text, sendOptions(dest))
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}, nil
}

func (m *botMessenger) SendPhoto(_ context.Context, dest Destination, photoURL, caption string) (MessageRef, error) {
	photo := &tele.Photo{File: tele.FromURL(photoURL), Caption: caption}
	msg, err := m.bot.Send(tele.ChatID(dest.ChatID), photo, sendOptions(dest))
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}, nil
}

func (m *botMessenger) Delete(_ context.Context, ref MessageRef) error {
	return m.bot.Delete(tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	})
}
