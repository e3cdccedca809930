package notify

import (
	"context"

	tginfra "github.com/Evzheva/chatbot-for-dating/internal/infra/telegram"
)

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string, rows [][]tginfra.InlineButton) error
}

// TelegramSender delivers messages through the bot, one button per row.
type TelegramSender struct {
	bot MessageSender
}

func NewTelegramSender(bot MessageSender) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	buttons := make([]tginfra.InlineButton, 0, len(msg.Buttons))
	for _, b := range msg.Buttons {
		buttons = append(buttons, tginfra.InlineButton{Text: b.Text, Data: b.Data})
	}
	return s.bot.SendMessage(ctx, msg.ChatID, msg.Text, tginfra.Column(buttons...))
}
