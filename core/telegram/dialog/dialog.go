// Package dialog implements the conversational state machine: a dialog is an
// ordered sequence of named steps, each one an Action that prompts, captures
// and validates a single answer. Progress is persisted per (chat, user)
// through a state.Store, so a conversation survives restarts when the store
// is durable.
//
// The read-prompt-write sequence of an advance is not atomic: a second
// update from the same user arriving before the state write lands can race.
// Human-paced input makes this acceptable; stores needing stronger
// guarantees can add per-key locking behind the Store interface.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"dialogbot/core/logger"
	"dialogbot/core/telegram/filter"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/telegram/keyboard"
	"dialogbot/core/telegram/router"
	"dialogbot/core/telegram/state"
	"log/slog"
)

// FinishFunc receives the final answers, keyed by step name, once the last
// step validates. The internal dialog marker is already stripped.
type FinishFunc func(c tele.Context, answers map[string]any) error

// Dialog is an immutable step sequence bound to a state store. Many
// concurrent conversations share one Dialog value.
type Dialog struct {
	name     string
	id       string
	steps    []string
	actions  map[string]Action
	onFinish FinishFunc
	store    state.Store
}

// Builder collects steps in declaration order. Declaration order is
// execution order; there is no branching or skipping.
type Builder struct {
	name     string
	steps    []string
	actions  map[string]Action
	onFinish FinishFunc
	err      error
}

// New starts building a dialog with the given name.
func New(name string) *Builder {
	return &Builder{name: name, actions: make(map[string]Action)}
}

// Step appends a named step. Names must be unique and not the reserved
// state marker key.
func (b *Builder) Step(name string, a Action) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case name == "" || name == state.DialogIDKey:
		b.err = fmt.Errorf("dialog %s: reserved or empty step name %q", b.name, name)
	case a == nil:
		b.err = fmt.Errorf("dialog %s: nil action for step %q", b.name, name)
	default:
		if _, dup := b.actions[name]; dup {
			b.err = fmt.Errorf("dialog %s: duplicate step %q", b.name, name)
			return b
		}
		b.steps = append(b.steps, name)
		b.actions[name] = a
	}
	return b
}

// OnFinish sets the completion callback.
func (b *Builder) OnFinish(fn FinishFunc) *Builder {
	b.onFinish = fn
	return b
}

// Build validates the definition and binds it to the store.
func (b *Builder) Build(store state.Store) (*Dialog, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.steps) == 0 {
		return nil, fmt.Errorf("dialog %s: no steps", b.name)
	}
	if store == nil {
		return nil, fmt.Errorf("dialog %s: nil store", b.name)
	}
	for _, name := range b.steps {
		if ti, ok := b.actions[name].(*TextInput); ok {
			if err := ti.Constraints.compile(); err != nil {
				return nil, fmt.Errorf("dialog %s, step %s: %w", b.name, name, err)
			}
		}
	}
	return &Dialog{
		name:     b.name,
		id:       b.name + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		steps:    slices.Clone(b.steps),
		actions:  b.actions,
		onFinish: b.onFinish,
		store:    store,
	}, nil
}

// Name returns the declared dialog name.
func (d *Dialog) Name() string { return d.name }

// ID returns the per-process dialog identity written into conversation
// state as the ownership marker.
func (d *Dialog) ID() string { return d.id }

// Steps returns the step names in execution order.
func (d *Dialog) Steps() []string { return slices.Clone(d.steps) }

// Start replaces whatever conversation the sender had in this chat with a
// fresh run of this dialog and sends the first prompt. Partial answers of a
// previously active dialog are discarded, never merged.
func (d *Dialog) Start(c tele.Context) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return ErrUnsupportedUpdate
	}
	cv := state.Conversation{
		ChatID: chat.ID,
		UserID: sender.ID,
		Data:   map[string]any{state.DialogIDKey: d.id},
	}
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "dialog", "dialog.start",
		slog.String("dialog", d.name),
		slog.String("dialog_id", d.id),
	)
	return d.advance(ctx, c, cv, false)
}

// StartHandler adapts Start to a command handler.
func (d *Dialog) StartHandler() tele.HandlerFunc {
	return d.Start
}

// Filter matches updates this dialog owns: the conversation carries this
// dialog's marker and sits on one of its steps. An idle conversation also
// matches so the handler can observe unclaimed updates without consuming
// them.
func (d *Dialog) Filter() filter.Filter {
	return func(c tele.Context) bool {
		cv, ok := state.FromContext(c)
		if !ok {
			return false
		}
		if cv.DialogID() == "" {
			return cv.Name == nil
		}
		if cv.DialogID() != d.id {
			return false
		}
		return cv.Name == nil || slices.Contains(d.steps, *cv.Name)
	}
}

// Handler consumes one update for the active conversation. Updates not
// owned by this dialog fall through untouched.
func (d *Dialog) Handler() tele.HandlerFunc {
	return func(c tele.Context) error {
		cv, ok := state.FromContext(c)
		if !ok {
			chat, sender := c.Chat(), c.Sender()
			if chat == nil || sender == nil {
				return nil
			}
			var err error
			cv, err = d.store.Get(tghelpers.BuildContext(c), chat.ID, sender.ID)
			if err != nil {
				return err
			}
		}
		if cv.DialogID() != d.id {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		if err := d.advance(ctx, c, cv, true); err != nil {
			return err
		}
		return router.ErrStopPropagation
	}
}

// Mount registers the dialog's handler in the router's dialog group.
func (d *Dialog) Mount(r *router.Router) {
	r.Handle(router.GroupDialog, router.Route{
		Name:    "dialog." + d.name,
		Filter:  d.Filter(),
		Handler: d.Handler(),
	})
}

// advance runs one transition: consume the pending answer when an update is
// being consumed, then either send the next prompt and persist, or finish.
// State is written only after the prompt went out, so a transport failure
// leaves the conversation exactly where it was.
func (d *Dialog) advance(ctx context.Context, c tele.Context, cv state.Conversation, consume bool) error {
	if consume && cv.Name != nil {
		step := *cv.Name
		act, ok := d.actions[step]
		if !ok {
			// State points at a step this process does not know.
			return d.store.Clear(ctx, cv.ChatID, cv.UserID)
		}

		raw, err := act.Extract(c)
		if err != nil {
			return d.reject(ctx, c, step, err)
		}
		value, err := act.Validate(raw)
		if err != nil {
			var ce *ConstraintError
			if errors.As(err, &ce) {
				ce.Step = step
			}
			return d.reject(ctx, c, step, err)
		}
		if cv.Data == nil {
			cv.Data = map[string]any{state.DialogIDKey: d.id}
		}
		cv.Data[step] = value

		if c.Callback() != nil {
			_ = c.Respond()
		}
	}

	next := d.nextStep(cv.Name)
	if next == "" {
		return d.finish(ctx, c, cv)
	}

	text, markup := d.actions[next].Render(cv.Data)
	var sendErr error
	if markup != nil {
		sendErr = c.Send(text, markup)
	} else {
		sendErr = c.Send(text)
	}
	if sendErr != nil {
		return fmt.Errorf("dialog %s: prompt for %s: %w", d.name, next, sendErr)
	}

	prev := ""
	if cv.Name != nil {
		prev = *cv.Name
	}
	cv.Name = &next
	if err := d.store.Set(ctx, cv); err != nil {
		return err
	}

	logger.Debug(ctx, "dialog", "dialog.advance",
		slog.String("dialog", d.name),
		slog.String("step", prev),
		slog.String("next_step", next),
	)
	return nil
}

// reject replies with the validation failure and leaves state untouched.
// Constraint messages are prefixed with the step name so the user knows
// which question the rejection refers to.
func (d *Dialog) reject(ctx context.Context, c tele.Context, step string, cause error) error {
	var text string
	var ce *ConstraintError
	switch {
	case errors.As(cause, &ce):
		text = ce.Step + ": " + capitalize(ce.Message)
	case errors.Is(cause, ErrNoInput):
		text = "No input provided, please answer the question above."
	case errors.Is(cause, ErrUnsupportedUpdate):
		text = "That kind of reply does not fit this question, please try again."
	default:
		text = "Invalid answer, please try again."
	}

	logger.Debug(ctx, "dialog", "dialog.reject",
		slog.String("dialog", d.name),
		slog.String("step", step),
		slog.String("err", logger.SanitizeLimit(cause.Error(), 256)),
	)
	if c.Callback() != nil {
		_ = c.Respond()
	}
	if err := c.Send(text); err != nil {
		return fmt.Errorf("dialog %s: reject reply: %w", d.name, err)
	}
	return nil
}

// finish delivers the answers and clears the conversation.
func (d *Dialog) finish(ctx context.Context, c tele.Context, cv state.Conversation) error {
	answers := make(map[string]any, len(cv.Data))
	for k, v := range cv.Data {
		if k == state.DialogIDKey {
			continue
		}
		answers[k] = v
	}

	if d.onFinish != nil {
		if err := d.onFinish(c, answers); err != nil {
			return err
		}
	}
	if err := d.store.Clear(ctx, cv.ChatID, cv.UserID); err != nil {
		return err
	}

	logger.Info(ctx, "dialog", "dialog.finish",
		slog.String("dialog", d.name),
		slog.String("dialog_id", d.id),
		slog.Int("answers", len(answers)),
	)
	return nil
}

// nextStep returns the step after current, the first step when current is
// nil, or "" when current was the last one.
func (d *Dialog) nextStep(current *string) string {
	if current == nil {
		return d.steps[0]
	}
	idx := slices.Index(d.steps, *current)
	if idx < 0 || idx+1 >= len(d.steps) {
		return ""
	}
	return d.steps[idx+1]
}

// CancelHandler clears whatever conversation is active and acknowledges,
// removing any reply keyboard left on screen. Cancelling with nothing
// active is a harmless no-op.
func CancelHandler(store state.Store, text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat, sender := c.Chat(), c.Sender()
		if chat == nil || sender == nil {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		if err := store.Clear(ctx, chat.ID, sender.ID); err != nil {
			return err
		}
		logger.Debug(ctx, "dialog", "dialog.cancel",
			slog.Int64("chat_id", chat.ID),
			slog.Int64("user_id", sender.ID),
		)
		return c.Send(text, keyboard.RemoveKeyboard())
	}
}
