package middleware

import (
	"dialogbot/core/logger"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/telegram/state"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// StateMiddleware loads the sender's conversation for the current chat and
// attaches it to the request context. A store failure surfaces to the user
// and stops the update, so handlers never run against unknown state.
func StateMiddleware(store state.Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			cv, err := store.Get(ctx, chat.ID, sender.ID)
			if err != nil {
				logger.Error(ctx, "store", "state.load",
					slog.Int64("chat_id", chat.ID),
					slog.Int64("user_id", sender.ID),
					slog.String("rid", logger.RIDFrom(ctx)),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
				return c.Send("Something went wrong, please try again later.")
			}
			state.Attach(c, cv)

			if logger.ShouldSampleDebug() && cv.Name != nil {
				logger.Debug(ctx, "store", "state.loaded",
					slog.String("state", *cv.Name),
					slog.String("dialog_id", cv.DialogID()),
				)
			}
			return next(c)
		}
	}
}
