package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes an inline button carrying raw callback data.
type InlineBtn struct {
	Text string
	Data string
}

// ForceReply returns a markup that forces the user to reply.
func ForceReply() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{ForceReply: true}
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// ReplyGrid splits a flat list of labels into rows of up to columns buttons.
func ReplyGrid(labels []string, columns int) *tele.ReplyMarkup {
	return ReplyButtons(Chunk(labels, columns)...)
}

// InlineGrid builds an inline keyboard from a flat list of buttons arranged
// in rows of up to columns buttons. Data is sent as raw callback data.
func InlineGrid(buttons []InlineBtn, columns int) *tele.ReplyMarkup {
	rows := Chunk(buttons, columns)
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline[i] = r
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// InlineRows builds an inline keyboard from explicit rows of buttons.
func InlineRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline[i] = r
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// Chunk splits a flat list into rows with up to n elements per row.
// If n <= 1, every element gets its own row.
func Chunk[T any](items []T, n int) [][]T {
	if n <= 1 {
		out := make([][]T, 0, len(items))
		for _, it := range items {
			out = append(out, []T{it})
		}
		return out
	}
	var rows [][]T
	for i := 0; i < len(items); i += n {
		end := i + n
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, items[i:end])
	}
	return rows
}
