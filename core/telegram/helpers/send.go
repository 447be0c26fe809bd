package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"dialogbot/core/logger"
	"dialogbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendHTML sends a message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
}

// EditOrSendHTML tries to edit the message (HTML) or sends a new one if edit fails.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}

// Broadcast enqueues one message per recipient chat through the dispatcher.
// Failed recipients are counted by the dispatcher, not returned.
func Broadcast(c tele.Context, bot *tele.Bot, chatIDs []int64, text string) error {
	disp := currentDispatcher()
	ctx := BuildContext(c)
	for _, id := range chatIDs {
		recipient := &tele.Chat{ID: id}
		run := func() error {
			_, err := bot.Send(recipient, text)
			return err
		}
		if disp == nil {
			if err := run(); err != nil {
				logger.Warn(ctx, "tg.sender", "broadcast.send_failed",
					slog.Int64("chat_id", id),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
			}
			continue
		}
		if err := disp.Enqueue(ctx, "broadcast", run); err != nil {
			return err
		}
	}
	return nil
}
