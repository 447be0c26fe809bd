package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/commands"
	"dialogbot/core/telegram/filter"
	"dialogbot/core/telegram/teletest"
	"dialogbot/core/users"
)

type codedErr struct{}

func (*codedErr) Error() string { return "constraint violated" }
func (*codedErr) Code() string  { return "constraint violation" }

func record(log *[]string, name string, err error) tele.HandlerFunc {
	return func(tele.Context) error {
		*log = append(*log, name)
		return err
	}
}

func TestDispatchRunsGroupsInPriorityOrder(t *testing.T) {
	var log []string
	r := New()
	r.Handle(GroupDefault, Route{Name: "late", Handler: record(&log, "late", nil)})
	r.Handle(GroupCommands, Route{Name: "early", Handler: record(&log, "early", nil)})

	require.NoError(t, r.Dispatch(teletest.New().WithMessage(1, 2, "hi")))
	assert.Equal(t, []string{"early", "late"}, log)
}

func TestDispatchFirstMatchPerGroup(t *testing.T) {
	var log []string
	r := New()
	r.Handle(GroupCommands, Route{
		Name:    "nope",
		Filter:  filter.Not(filter.Any()),
		Handler: record(&log, "nope", nil),
	})
	r.Handle(GroupCommands, Route{Name: "first", Handler: record(&log, "first", nil)})
	r.Handle(GroupCommands, Route{Name: "second", Handler: record(&log, "second", nil)})

	require.NoError(t, r.Dispatch(teletest.New().WithMessage(1, 2, "hi")))
	assert.Equal(t, []string{"first"}, log)
}

func TestDispatchStopPropagationHaltsLaterGroups(t *testing.T) {
	var log []string
	r := New()
	r.Handle(GroupDialog, Route{Name: "dialog", Handler: record(&log, "dialog", ErrStopPropagation)})
	r.Handle(GroupDefault, Route{Name: "late", Handler: record(&log, "late", nil)})

	err := r.Dispatch(teletest.New().WithMessage(1, 2, "hi"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"dialog"}, log)
}

func TestDispatchErrorHalts(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	r := New()
	r.Handle(GroupCommands, Route{Name: "bad", Handler: record(&log, "bad", boom)})
	r.Handle(GroupDefault, Route{Name: "late", Handler: record(&log, "late", nil)})

	err := r.Dispatch(teletest.New().WithMessage(1, 2, "hi"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"bad"}, log)
}

func TestDispatchFallback(t *testing.T) {
	var log []string
	r := New()
	r.Handle(GroupCommands, Route{
		Name:    "never",
		Filter:  filter.Not(filter.Any()),
		Handler: record(&log, "never", nil),
	})
	r.Fallback(record(&log, "fallback", nil))

	require.NoError(t, r.Dispatch(teletest.New().WithMessage(1, 2, "hi")))
	assert.Equal(t, []string{"fallback"}, log)
}

func TestBindings(t *testing.T) {
	r := New()
	bindings := r.Bindings(tele.OnText, tele.OnCallback)

	require.Len(t, bindings, 2)
	assert.Equal(t, tele.OnText, bindings[0].Endpoint)
	assert.Equal(t, tele.OnCallback, bindings[1].Endpoint)
	assert.NotNil(t, bindings[0].Handler)
}

func TestCommandRouteParsesArgs(t *testing.T) {
	var got map[string]any
	cmds := map[string]commands.Command{
		"promote": {
			Handler: func(c tele.Context) error {
				got = commands.ArgsFrom(c)
				return nil
			},
			Args: []commands.Arg{
				{Name: "user_id", Kind: commands.KindInt, Required: true},
			},
		},
	}

	r := New()
	for _, rt := range CommandRoutes(cmds) {
		r.Handle(GroupCommands, rt)
	}

	require.NoError(t, r.Dispatch(teletest.New().WithMessage(1, 2, "/promote 42")))
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got["user_id"])
}

func TestCommandRouteRepliesUsageOnBadArgs(t *testing.T) {
	called := false
	cmds := map[string]commands.Command{
		"promote": {
			Handler: func(tele.Context) error { called = true; return nil },
			Args: []commands.Arg{
				{Name: "user_id", Kind: commands.KindInt, Required: true},
			},
		},
	}

	r := New()
	for _, rt := range CommandRoutes(cmds) {
		r.Handle(GroupCommands, rt)
	}

	c := teletest.New().WithMessage(1, 2, "/promote")
	require.NoError(t, r.Dispatch(c))
	assert.False(t, called)
	assert.Contains(t, c.LastSend().Text(), "/promote")
}

func TestCommandRouteAdminOnly(t *testing.T) {
	called := false
	cmds := map[string]commands.Command{
		"announce": {
			Handler:   func(tele.Context) error { called = true; return nil },
			AdminOnly: true,
		},
	}

	r := New()
	for _, rt := range CommandRoutes(cmds) {
		r.Handle(GroupCommands, rt)
	}

	plain := teletest.New().WithMessage(1, 2, "/announce")
	require.NoError(t, r.Dispatch(plain))
	assert.False(t, called)
	assert.Contains(t, plain.LastSend().Text(), "administrators")

	admin := teletest.New().WithMessage(1, 2, "/announce")
	users.Attach(admin, users.User{ID: 2, IsAdmin: true})
	require.NoError(t, r.Dispatch(admin))
	assert.True(t, called)
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "start", normalizeHandlerName("/start"))
	assert.Equal(t, "unknown", normalizeHandlerName("  "))
	assert.Equal(t, "two_words", normalizeHandlerName("Two Words"))
}

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("plain")))
	assert.Equal(t, "", deriveErrorCode(nil))
	assert.Equal(t, "CONSTRAINT_VIOLATION", deriveErrorCode(&codedErr{}))
}
