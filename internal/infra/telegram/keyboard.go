package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

type InlineButton struct {
	Text string
	Data string
}

func BuildInlineKeyboard(rows [][]InlineButton) tgbotapi.InlineKeyboardMarkup {
	keyboardRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}
		keyboardRows = append(keyboardRows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboardRows...)
}

// Column puts every button on its own row.
func Column(buttons ...InlineButton) [][]InlineButton {
	rows := make([][]InlineButton, 0, len(buttons))
	for _, button := range buttons {
		rows = append(rows, []InlineButton{button})
	}
	return rows
}
