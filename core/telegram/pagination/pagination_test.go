package pagination

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialogbot/core/telegram/callbacks"
	"dialogbot/core/telegram/router"
	"dialogbot/core/telegram/teletest"
)

type fakeSource struct{ items []string }

func (s fakeSource) Count(context.Context) (int, error) { return len(s.items), nil }

func (s fakeSource) Page(_ context.Context, page, size int) ([]string, error) {
	start := (page - 1) * size
	if start >= len(s.items) {
		return nil, nil
	}
	end := start + size
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[start:end], nil
}

func numbered(n int) fakeSource {
	s := fakeSource{}
	for i := 1; i <= n; i++ {
		s.items = append(s.items, fmt.Sprintf("item %d", i))
	}
	return s
}

func TestSendFirstPage(t *testing.T) {
	p := New("list", "Items", numbered(12), 5)

	c := teletest.New().WithMessage(1, 2, "/list")
	require.NoError(t, p.Send(c, 1))

	sent := c.LastSend()
	assert.Contains(t, sent.Text(), "Items (12)")
	assert.Contains(t, sent.Text(), "1. item 1")
	assert.Contains(t, sent.Text(), "5. item 5")
	assert.NotContains(t, sent.Text(), "item 6")

	markup := sent.Markup()
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	// First page has only the position and forward buttons.
	assert.Equal(t, "1/3", markup.InlineKeyboard[0][0].Text)

	action, params := callbacks.Unpack(markup.InlineKeyboard[0][1].Data)
	assert.Equal(t, "list", action)
	assert.Equal(t, "2", params["p"])
}

func TestSendMiddlePageHasBothDirections(t *testing.T) {
	p := New("list", "Items", numbered(12), 5)

	c := teletest.New().WithMessage(1, 2, "/list")
	require.NoError(t, p.Send(c, 2))

	markup := c.LastSend().Markup()
	require.NotNil(t, markup)
	assert.Len(t, markup.InlineKeyboard[0], 5)
}

func TestSendClampsPageRange(t *testing.T) {
	p := New("list", "Items", numbered(7), 5)

	c := teletest.New().WithMessage(1, 2, "/list")
	require.NoError(t, p.Send(c, 99))
	assert.Contains(t, c.LastSend().Text(), "item 7")
}

func TestSinglePageHasNoKeyboard(t *testing.T) {
	p := New("list", "Items", numbered(3), 5)

	c := teletest.New().WithMessage(1, 2, "/list")
	require.NoError(t, p.Send(c, 1))
	assert.Nil(t, c.LastSend().Markup())
}

func TestEmptySource(t *testing.T) {
	p := New("list", "Items", fakeSource{}, 5)

	c := teletest.New().WithMessage(1, 2, "/list")
	require.NoError(t, p.Send(c, 1))
	assert.Contains(t, c.LastSend().Text(), "Nothing here yet")
}

func TestHandlerEditsOnCallback(t *testing.T) {
	p := New("list", "Items", numbered(12), 5)

	c := teletest.New().WithCallback(1, 2, callbacks.Pack("list", map[string]string{"p": "3"}))
	err := p.Handler()(c)
	assert.ErrorIs(t, err, router.ErrStopPropagation)

	require.Len(t, c.Edits, 1)
	assert.Contains(t, c.Edits[0].Text(), "item 11")
	assert.NotEmpty(t, c.Responses)
}
