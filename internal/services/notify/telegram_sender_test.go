package notify

import (
	"context"
	"testing"

	tginfra "github.com/Evzheva/chatbot-for-dating/internal/infra/telegram"
)

type keyboardRecorder struct {
	chatID int64
	text   string
	rows   [][]tginfra.InlineButton
}

func (r *keyboardRecorder) SendMessage(_ context.Context, chatID int64, text string, rows [][]tginfra.InlineButton) error {
	r.chatID, r.text, r.rows = chatID, text, rows
	return nil
}

func TestTelegramSenderPutsEachButtonOnItsOwnRow(t *testing.T) {
	bot := &keyboardRecorder{}

	err := NewTelegramSender(bot).Send(context.Background(), Message{
		ChatID:  9,
		Text:    "hello",
		Buttons: []Button{{Text: "one", Data: "a"}, {Text: "two", Data: "b"}},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if bot.chatID != 9 || bot.text != "hello" {
		t.Fatalf("unexpected message: %+v", bot)
	}
	if len(bot.rows) != 2 || bot.rows[1][0].Data != "b" {
		t.Fatalf("unexpected keyboard: %+v", bot.rows)
	}
}
