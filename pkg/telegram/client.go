package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers one Markdown message to a chat.
type Notifier interface {
	SendMessage(text string) error
}

type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient authenticates botToken and returns a notifier bound to chatID.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not configured")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", err)
	}
	return &client{bot: bot, chatID: chatID}, nil
}

func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// SendAll sends messages in order and stops at the first failure.
func SendAll(n Notifier, messages []string) error {
	for i, m := range messages {
		if err := n.SendMessage(m); err != nil {
			return fmt.Errorf("part %d/%d: %w", i+1, len(messages), err)
		}
	}
	return nil
}
