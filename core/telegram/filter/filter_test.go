package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dialogbot/core/telegram/state"
	"dialogbot/core/telegram/teletest"
	"dialogbot/core/users"
)

func TestCombinators(t *testing.T) {
	c := teletest.New().WithMessage(1, 2, "hi")

	truthy := Any()
	falsy := Not(Any())

	assert.True(t, And(truthy, truthy)(c))
	assert.False(t, And(truthy, falsy)(c))
	assert.True(t, And()(c))
	assert.True(t, Or(falsy, truthy)(c))
	assert.False(t, Or(falsy, falsy)(c))
	assert.True(t, Not(falsy)(c))
}

func TestPrivate(t *testing.T) {
	assert.True(t, Private(teletest.New().WithMessage(1, 2, "hi")))
	assert.False(t, Private(teletest.New().WithGroupMessage(-100, 2, "hi")))
}

func TestText(t *testing.T) {
	assert.True(t, Text(teletest.New().WithMessage(1, 2, "hello")))
	assert.True(t, Text(teletest.New().WithCaption(1, 2, "caption")))
	assert.False(t, Text(teletest.New().WithMessage(1, 2, "")))
	assert.False(t, Text(teletest.New().WithCallback(1, 2, "x")))

	// The callback's origin message carries the bot's own text; it is not
	// user input.
	cb := teletest.New().WithCallback(1, 2, "x")
	cb.Upd.Callback.Message.Text = "What is your name?"
	assert.False(t, Text(cb))
}

func TestCommand(t *testing.T) {
	f := Command("start")

	assert.True(t, f(teletest.New().WithMessage(1, 2, "/start")))
	assert.True(t, f(teletest.New().WithMessage(1, 2, "/START some args")))
	assert.True(t, f(teletest.New().WithMessage(1, 2, "/start@my_bot")))
	assert.False(t, f(teletest.New().WithMessage(1, 2, "/started")))
	assert.False(t, f(teletest.New().WithMessage(1, 2, "start")))
	assert.False(t, f(teletest.New().WithCallback(1, 2, "start")))

	cb := teletest.New().WithCallback(1, 2, "start")
	cb.Upd.Callback.Message.Text = "/start"
	assert.False(t, f(cb))
}

func TestAdmin(t *testing.T) {
	c := teletest.New().WithMessage(1, 2, "/promote")
	assert.False(t, Admin(c))

	users.Attach(c, users.User{ID: 2, IsAdmin: true})
	assert.True(t, Admin(c))

	users.Attach(c, users.User{ID: 2, IsAdmin: false})
	assert.False(t, Admin(c))
}

func TestCallbackData(t *testing.T) {
	f := CallbackData("pick_color")

	assert.True(t, f(teletest.New().WithCallback(1, 2, "pick_color")))
	assert.True(t, f(teletest.New().WithCallback(1, 2, "pick_color?v=red")))
	assert.True(t, f(teletest.New().WithCallback(1, 2, "PICK_COLOR?v=red")))
	assert.False(t, f(teletest.New().WithCallback(1, 2, "pick_colors")))
	assert.False(t, f(teletest.New().WithCallback(1, 2, "other?v=red")))
	assert.False(t, f(teletest.New().WithMessage(1, 2, "pick_color")))
}

func TestCallbackDataEscapesActionID(t *testing.T) {
	f := CallbackData("a.b")

	assert.True(t, f(teletest.New().WithCallback(1, 2, "a.b?v=1")))
	assert.False(t, f(teletest.New().WithCallback(1, 2, "axb?v=1")))
}

func TestInState(t *testing.T) {
	c := teletest.New().WithMessage(1, 2, "Ann")

	// No state middleware ran: only the idle filter matches.
	assert.True(t, InState()(c))
	assert.False(t, InState("*")(c))
	assert.False(t, InState("age")(c))

	name := "age"
	state.Attach(c, state.Conversation{ChatID: 1, UserID: 2, Name: &name})

	assert.True(t, InState("age")(c))
	assert.True(t, InState("age", "first_name")(c))
	assert.True(t, InState("*")(c))
	assert.False(t, InState("first_name")(c))
	assert.False(t, InState()(c))
	assert.False(t, Idle()(c))

	state.Attach(c, state.Conversation{ChatID: 1, UserID: 2})
	assert.True(t, InState()(c))
	assert.True(t, Idle()(c))
	assert.False(t, InState("*")(c))
}
