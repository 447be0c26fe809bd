package router

import (
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"dialogbot/core/logger"
	"dialogbot/core/telegram/callbacks"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/telegram/middleware"
	"log/slog"
)

func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn tele.HandlerFunc) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn(c)
	logHandlerSummary(c, handlerName, start, err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := middleware.GetCounters(c)

	status := "ok"
	outcome := "ok"
	if err != nil && err != ErrStopPropagation {
		status = "fail"
		outcome = "fail"
	}

	duration := logger.RoundMS(time.Since(start)).Milliseconds()
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", duration),
	}
	if cb := c.Callback(); cb != nil {
		attrs = append(attrs, slog.String("cb_key", callbacks.Action(c)))
	}
	if err != nil && err != ErrStopPropagation {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
			slog.String("cause", handlerName),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	type coder interface{ Code() string }
	if c, ok := err.(coder); ok {
		code := strings.TrimSpace(c.Code())
		if code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(strings.ReplaceAll(t.Name(), " ", "_"))
	}
	return "UNKNOWN_ERROR"
}
