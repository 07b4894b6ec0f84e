// Package keyboard builds Telegram reply keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// ReplyButtons builds a one-time reply keyboard out of plain text labels,
// laid out rowWidth buttons per row.
func ReplyButtons(labels []string, rowWidth int) *tele.ReplyMarkup {
	if rowWidth <= 0 {
		rowWidth = 2
	}

	markup := &tele.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	var rows []tele.Row
	row := make([]tele.Btn, 0, rowWidth)
	for _, label := range labels {
		row = append(row, markup.Text(label))
		if len(row) == rowWidth {
			rows = append(rows, markup.Row(row...))
			row = make([]tele.Btn, 0, rowWidth)
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}

	markup.Reply(rows...)
	return markup
}

// RemoveKeyboard hides any active reply keyboard on the client.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
