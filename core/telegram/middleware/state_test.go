package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/state"
	"dialogbot/core/telegram/teletest"
)

type brokenStore struct {
	getErr error
}

func (s *brokenStore) Get(context.Context, int64, int64) (state.Conversation, error) {
	return state.Conversation{}, s.getErr
}

func (s *brokenStore) Set(context.Context, state.Conversation) error { return nil }

func (s *brokenStore) Clear(context.Context, int64, int64) error { return nil }

func TestStateMiddlewareAttachesConversation(t *testing.T) {
	store := state.NewMemoryStore()
	name := "age"
	require.NoError(t, store.Set(context.Background(), state.Conversation{
		ChatID: 1, UserID: 2, Name: &name,
		Data: map[string]any{state.DialogIDKey: "survey_abc12345"},
	}))

	var seen state.Conversation
	handler := StateMiddleware(store)(func(c tele.Context) error {
		seen, _ = state.FromContext(c)
		return nil
	})

	c := teletest.New().WithMessage(1, 2, "30")
	require.NoError(t, handler(c))
	assert.Equal(t, "age", seen.Step())
	assert.Equal(t, "survey_abc12345", seen.DialogID())
}

// A store outage must stop the update before any handler runs.
func TestStateMiddlewareStopsUpdateWhenStoreIsDown(t *testing.T) {
	store := &brokenStore{getErr: errors.New("connection refused")}

	called := false
	handler := StateMiddleware(store)(func(tele.Context) error {
		called = true
		return nil
	})

	c := teletest.New().WithMessage(1, 2, "30")
	require.NoError(t, handler(c))
	assert.False(t, called)
	assert.Contains(t, c.LastSend().Text(), "Something went wrong")
}
