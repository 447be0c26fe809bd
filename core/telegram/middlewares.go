package telegram

import (
	"strings"
	"time"

	coreconfig "dialogbot/core/config"
	"dialogbot/core/telegram/middleware"
	"dialogbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared update pipeline: recover, rate limit,
// receipt logging, send metrics, user upsert, conversation load. Directory
// and store stages are skipped when nil, which matters for bots running
// without a database.
func DefaultMiddlewares(
	cfg *coreconfig.Config,
	dir middleware.Directory,
	store state.Store,
	onLimited func(tele.Context) error,
) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			opts := middleware.RateLimitOptions{
				Interval: interval,
				Exclude:  ex,
			}
			if onLimited != nil {
				opts.OnLimited = onLimited
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use:  middleware.RateLimitMiddleware(opts),
			})
		}
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	if dir != nil {
		mws = append(mws, Middleware{Name: "user", Use: middleware.UserMiddleware(dir)})
	}
	if store != nil {
		mws = append(mws, Middleware{Name: "state", Use: middleware.StateMiddleware(store)})
	}

	return mws
}
