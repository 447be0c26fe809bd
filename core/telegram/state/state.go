// Package state persists per-(chat, user) conversation position between
// updates, so multi-step flows survive process restarts when a durable
// backend is configured.
package state

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// DialogIDKey marks the collected-answers map with the identity of the dialog
// instance that produced it. It is reserved: flows must not use it as a step
// name.
const DialogIDKey = "_dialog_id"

// BucketKey is where middleware stores the loaded Conversation on the
// request context.
const BucketKey = "conversation"

// Conversation is the persisted position of one user in one chat. Name is the
// current step, nil when the user is idle. Data accumulates validated answers
// keyed by step name, plus the DialogIDKey marker.
type Conversation struct {
	ChatID int64
	UserID int64
	Name   *string
	Data   map[string]any
}

// Step returns the current step name, or "" when idle.
func (cv Conversation) Step() string {
	if cv.Name == nil {
		return ""
	}
	return *cv.Name
}

// DialogID returns the dialog instance marker from Data, or "".
func (cv Conversation) DialogID() string {
	id, _ := cv.Data[DialogIDKey].(string)
	return id
}

// Store keeps conversations keyed by (chat, user). Get on an unknown key
// returns an idle conversation, not an error. Clear on an unknown key is a
// no-op.
type Store interface {
	Get(ctx context.Context, chatID, userID int64) (Conversation, error)
	Set(ctx context.Context, cv Conversation) error
	Clear(ctx context.Context, chatID, userID int64) error
}

// Attach stores the loaded conversation on the telebot context.
func Attach(c tele.Context, cv Conversation) {
	c.Set(BucketKey, cv)
}

// FromContext returns the conversation loaded by middleware. The second
// return is false when no state middleware ran for this update.
func FromContext(c tele.Context) (Conversation, bool) {
	cv, ok := c.Get(BucketKey).(Conversation)
	return cv, ok
}
