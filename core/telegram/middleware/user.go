package middleware

import (
	"context"

	"dialogbot/core/logger"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/users"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Directory resolves Telegram senders into stored user records.
type Directory interface {
	ResolveOrCreate(ctx context.Context, tu *tele.User) (users.User, error)
}

// UserMiddleware upserts the sender's profile on every update and attaches
// the stored record to the request context. When the directory is down the
// update is dropped so later handlers never see an unresolved sender.
func UserMiddleware(dir Directory) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.IsBot {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			u, err := dir.ResolveOrCreate(ctx, sender)
			if err != nil {
				logger.Users.Error("resolve failed",
					slog.String("event", "users.resolve"),
					slog.Int64("user_id", sender.ID),
					slog.String("rid", logger.RIDFrom(ctx)),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
				return nil
			}
			users.Attach(c, u)
			return next(c)
		}
	}
}
