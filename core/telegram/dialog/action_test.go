package dialog

import (
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialogbot/core/telegram/callbacks"
	"dialogbot/core/telegram/teletest"
)

func TestTextInputExtract(t *testing.T) {
	a := &TextInput{Prompt: Static("Your name?")}

	raw, err := a.Extract(teletest.New().WithMessage(1, 2, "Ann"))
	require.NoError(t, err)
	assert.Equal(t, "Ann", raw)

	raw, err = a.Extract(teletest.New().WithCaption(1, 2, "from caption"))
	require.NoError(t, err)
	assert.Equal(t, "from caption", raw)

	_, err = a.Extract(teletest.New().WithMessage(1, 2, ""))
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = a.Extract(teletest.New().WithCallback(1, 2, "x?v=1"))
	assert.ErrorIs(t, err, ErrUnsupportedUpdate)
}

// A callback's Message() is the bot's own prompt; free-text steps must not
// read it as the user's answer.
func TestTextStepsRefuseCallbackWithPromptText(t *testing.T) {
	c := teletest.New().WithCallback(1, 2, "x?v=1")
	c.Upd.Callback.Message.Text = "What is your name?"

	ti := &TextInput{Prompt: Static("Your name?")}
	_, err := ti.Extract(c)
	assert.ErrorIs(t, err, ErrUnsupportedUpdate)

	rs := &ReplySelect{Prompt: Static("Pick one"), Choices: []string{"Red"}}
	_, err = rs.Extract(c)
	assert.ErrorIs(t, err, ErrUnsupportedUpdate)
}

func TestTextInputValidateUsesConstraints(t *testing.T) {
	a := &TextInput{
		Prompt:      Static("Age?"),
		Kind:        KindInt,
		Constraints: &Constraints{Ge: pointer.ToFloat64(0)},
	}

	v, err := a.Validate("30")
	require.NoError(t, err)
	assert.Equal(t, int64(30), v)

	_, err = a.Validate("-1")
	assert.Error(t, err)
}

func TestDynamicPrompt(t *testing.T) {
	a := &TextInput{Prompt: Dynamic(func(data map[string]any) string {
		name, _ := data["first_name"].(string)
		return "Hello " + name + ", enter age"
	})}

	text, markup := a.Render(map[string]any{"first_name": "Ann"})
	assert.Equal(t, "Hello Ann, enter age", text)
	assert.Nil(t, markup)
}

func TestReplySelectRendersGrid(t *testing.T) {
	a := &ReplySelect{
		Prompt:  Static("Favorite color?"),
		Choices: []string{"Red", "Blue", "Green"},
		Columns: 2,
	}

	text, markup := a.Render(nil)
	assert.Equal(t, "Favorite color?", text)
	require.NotNil(t, markup)
	require.Len(t, markup.ReplyKeyboard, 2)
	assert.Len(t, markup.ReplyKeyboard[0], 2)
	assert.Len(t, markup.ReplyKeyboard[1], 1)
	assert.Equal(t, "Red", markup.ReplyKeyboard[0][0].Text)

	raw, err := a.Extract(teletest.New().WithMessage(1, 2, "Blue"))
	require.NoError(t, err)
	v, err := a.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Blue", v)
}

func TestInlineSelectRenderPacksPayload(t *testing.T) {
	a := NewInlineSelect(Static("Pick one"), []Choice{
		{Label: "Red", Value: "red"},
		{Label: "Blue", Value: "blue"},
	}, 2)

	text, markup := a.Render(nil)
	assert.Equal(t, "Pick one", text)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)

	action, params := callbacks.Unpack(markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, a.ActionID(), action)
	assert.Equal(t, "red", params["v"])
}

func TestInlineSelectExtract(t *testing.T) {
	a := NewInlineSelect(Static("Pick one"), []Choice{{Label: "Red", Value: "red"}}, 1)

	raw, err := a.Extract(teletest.New().WithCallback(1, 2, callbacks.Pack(a.ActionID(), map[string]string{"v": "red"})))
	require.NoError(t, err)
	assert.Equal(t, "red", raw)

	_, err = a.Extract(teletest.New().WithCallback(1, 2, a.ActionID()))
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = a.Extract(teletest.New().WithMessage(1, 2, "red"))
	assert.ErrorIs(t, err, ErrUnsupportedUpdate)
}

func TestInlineSelectUnrestrictedAcceptsForeignValue(t *testing.T) {
	a := NewInlineSelect(Static("Pick"), []Choice{
		{Label: "Red", Value: "red"},
		{Label: "Blue", Value: "blue"},
	}, 2)

	v, err := a.Validate("green")
	require.NoError(t, err)
	assert.Equal(t, "green", v)
}

func TestInlineSelectRestrictedRejectsForeignValue(t *testing.T) {
	a := NewInlineSelect(Static("Pick"), []Choice{
		{Label: "Red", Value: "red"},
		{Label: "Blue", Value: "blue"},
	}, 2, Restrict())

	_, err := a.Validate("green")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permitted: 'red', 'blue'")

	v, err := a.Validate("blue")
	require.NoError(t, err)
	assert.Equal(t, "blue", v)
}

func TestInlineSelectActionIDsAreUnique(t *testing.T) {
	a := NewInlineSelect(Static("a"), []Choice{{Label: "x", Value: "x"}}, 1)
	b := NewInlineSelect(Static("b"), []Choice{{Label: "x", Value: "x"}}, 1)

	assert.Len(t, a.ActionID(), 7)
	assert.NotEqual(t, a.ActionID(), b.ActionID())
}

func TestBoolPrompt(t *testing.T) {
	a := NewBoolPrompt(Static("Is everything right?"))

	_, markup := a.Render(nil)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "No", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Yes", markup.InlineKeyboard[0][1].Text)

	v, err := a.Validate("1")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = a.Validate("0")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = a.Validate("2")
	assert.Error(t, err)
}
