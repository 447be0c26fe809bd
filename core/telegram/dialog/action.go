package dialog

import (
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/callbacks"
	"dialogbot/core/telegram/keyboard"
)

// Prompt is the question text of a step, either static or computed from the
// answers collected so far.
type Prompt struct {
	text string
	fn   func(data map[string]any) string
}

// Static returns a fixed prompt.
func Static(text string) Prompt { return Prompt{text: text} }

// Dynamic returns a prompt computed from prior answers at render time.
func Dynamic(fn func(data map[string]any) string) Prompt { return Prompt{fn: fn} }

// Render resolves the prompt against the accumulated answers.
func (p Prompt) Render(data map[string]any) string {
	if p.fn != nil {
		return p.fn(data)
	}
	return p.text
}

// Action is one prompt-and-capture unit of a dialog. Render must not mutate
// the answers map. Extract pulls the raw answer out of an update or fails
// with ErrNoInput or ErrUnsupportedUpdate. Validate casts and checks the raw
// answer, returning the typed value stored under the step name.
type Action interface {
	Render(data map[string]any) (string, *tele.ReplyMarkup)
	Extract(c tele.Context) (string, error)
	Validate(raw string) (any, error)
}

// TextInput captures a free-text answer from a message's text or caption.
type TextInput struct {
	Prompt      Prompt
	Kind        ResultKind
	Constraints *Constraints
}

func (a *TextInput) Render(data map[string]any) (string, *tele.ReplyMarkup) {
	return a.Prompt.Render(data), nil
}

func (a *TextInput) Extract(c tele.Context) (string, error) {
	return messageText(c)
}

func (a *TextInput) Validate(raw string) (any, error) {
	return validateAndCast(raw, a.Kind, a.Constraints)
}

// ReplySelect captures a choice from a reply keyboard. The pressed label
// arrives as an ordinary text message, so any typed text is accepted too.
type ReplySelect struct {
	Prompt  Prompt
	Choices []string
	Columns int
}

func (a *ReplySelect) Render(data map[string]any) (string, *tele.ReplyMarkup) {
	cols := a.Columns
	if cols < 1 {
		cols = 1
	}
	return a.Prompt.Render(data), keyboard.ReplyGrid(a.Choices, cols)
}

func (a *ReplySelect) Extract(c tele.Context) (string, error) {
	return messageText(c)
}

func (a *ReplySelect) Validate(raw string) (any, error) {
	return raw, nil
}

// Choice is one inline button: the label shown and the value captured.
type Choice struct {
	Label string
	Value string
}

// InlineSelect captures a choice from inline buttons. Every button packs the
// step's opaque action id plus the choice value into the callback payload.
type InlineSelect struct {
	prompt   Prompt
	choices  []Choice
	columns  int
	strict   bool
	actionID string
}

// SelectOption tunes an InlineSelect.
type SelectOption func(*InlineSelect)

// Restrict rejects callback values outside the declared choice set. Off by
// default: a forged payload value is otherwise accepted as a raw string.
func Restrict() SelectOption {
	return func(a *InlineSelect) { a.strict = true }
}

// NewInlineSelect builds an inline-button step with a fresh opaque action id.
func NewInlineSelect(prompt Prompt, choices []Choice, columns int, opts ...SelectOption) *InlineSelect {
	if columns < 1 {
		columns = 1
	}
	a := &InlineSelect{
		prompt:   prompt,
		choices:  choices,
		columns:  columns,
		actionID: newActionID(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ActionID exposes the step's opaque callback action id.
func (a *InlineSelect) ActionID() string { return a.actionID }

func (a *InlineSelect) Render(data map[string]any) (string, *tele.ReplyMarkup) {
	buttons := make([]keyboard.InlineBtn, 0, len(a.choices))
	for _, ch := range a.choices {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: ch.Label,
			Data: callbacks.Pack(a.actionID, map[string]string{"v": ch.Value}),
		})
	}
	return a.prompt.Render(data), keyboard.InlineGrid(buttons, a.columns)
}

func (a *InlineSelect) Extract(c tele.Context) (string, error) {
	if c.Callback() == nil {
		return "", ErrUnsupportedUpdate
	}
	v, ok := callbacks.Param(c, "v")
	if !ok {
		return "", ErrNoInput
	}
	return v, nil
}

func (a *InlineSelect) Validate(raw string) (any, error) {
	if a.strict && !a.allowed(raw) {
		return nil, violation("value is not a valid enumeration member; permitted: %s", a.permitted())
	}
	return raw, nil
}

func (a *InlineSelect) allowed(raw string) bool {
	for _, ch := range a.choices {
		if ch.Value == raw {
			return true
		}
	}
	return false
}

func (a *InlineSelect) permitted() string {
	quoted := make([]string, 0, len(a.choices))
	for _, ch := range a.choices {
		quoted = append(quoted, "'"+ch.Value+"'")
	}
	return strings.Join(quoted, ", ")
}

// BoolPrompt is an InlineSelect fixed to Yes/No buttons captured as a bool.
type BoolPrompt struct {
	inner *InlineSelect
}

// NewBoolPrompt builds a two-button yes/no step.
func NewBoolPrompt(prompt Prompt) *BoolPrompt {
	return &BoolPrompt{
		inner: NewInlineSelect(prompt, []Choice{
			{Label: "No", Value: "0"},
			{Label: "Yes", Value: "1"},
		}, 2, Restrict()),
	}
}

func (a *BoolPrompt) Render(data map[string]any) (string, *tele.ReplyMarkup) {
	return a.inner.Render(data)
}

func (a *BoolPrompt) Extract(c tele.Context) (string, error) {
	return a.inner.Extract(c)
}

func (a *BoolPrompt) Validate(raw string) (any, error) {
	if _, err := a.inner.Validate(raw); err != nil {
		return nil, err
	}
	return raw == "1", nil
}

// messageText pulls text or caption out of a message update. Callback
// updates are refused outright: telebot's Message() falls back to the
// callback's origin message, which is the bot's own prompt, not an answer.
func messageText(c tele.Context) (string, error) {
	if c.Callback() != nil {
		return "", ErrUnsupportedUpdate
	}
	m := c.Message()
	if m == nil {
		return "", ErrUnsupportedUpdate
	}
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	if text == "" {
		return "", ErrNoInput
	}
	return text, nil
}

// newActionID returns a short opaque id unique enough per process.
func newActionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
}
