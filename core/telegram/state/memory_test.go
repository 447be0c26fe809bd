package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetUnknownReturnsIdle(t *testing.T) {
	s := NewMemoryStore()

	cv, err := s.Get(context.Background(), 10, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(10), cv.ChatID)
	assert.Equal(t, int64(20), cv.UserID)
	assert.Nil(t, cv.Name)
	assert.Empty(t, cv.Data)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	name := "age"
	require.NoError(t, s.Set(ctx, Conversation{
		ChatID: 1,
		UserID: 2,
		Name:   &name,
		Data:   map[string]any{DialogIDKey: "survey_a1b2c3d4", "first_name": "Ann"},
	}))

	cv, err := s.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, cv.Name)
	assert.Equal(t, "age", *cv.Name)
	assert.Equal(t, "survey_a1b2c3d4", cv.DialogID())
	assert.Equal(t, "Ann", cv.Data["first_name"])
}

func TestMemoryStoreKeysIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := "step_a"
	b := "step_b"
	require.NoError(t, s.Set(ctx, Conversation{ChatID: 1, UserID: 100, Name: &a}))
	require.NoError(t, s.Set(ctx, Conversation{ChatID: 1, UserID: 200, Name: &b}))

	one, err := s.Get(ctx, 1, 100)
	require.NoError(t, err)
	two, err := s.Get(ctx, 1, 200)
	require.NoError(t, err)

	assert.Equal(t, "step_a", one.Step())
	assert.Equal(t, "step_b", two.Step())
}

func TestMemoryStoreClearIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	name := "color"
	require.NoError(t, s.Set(ctx, Conversation{ChatID: 3, UserID: 4, Name: &name}))
	require.NoError(t, s.Clear(ctx, 3, 4))
	require.NoError(t, s.Clear(ctx, 3, 4))

	cv, err := s.Get(ctx, 3, 4)
	require.NoError(t, err)
	assert.Nil(t, cv.Name)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	data := map[string]any{"k": "v"}
	require.NoError(t, s.Set(ctx, Conversation{ChatID: 5, UserID: 6, Data: data}))
	data["k"] = "mutated"

	cv, err := s.Get(ctx, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, "v", cv.Data["k"])

	cv.Data["k"] = "mutated again"
	again, err := s.Get(ctx, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, "v", again.Data["k"])
}
