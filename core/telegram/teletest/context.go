// Package teletest provides lightweight doubles for handler and filter
// tests. The Context stub records outgoing messages instead of calling the
// Bot API; any interface method a test does not exercise stays unimplemented
// and panics if reached.
package teletest

import (
	tele "gopkg.in/telebot.v4"
)

// Sent captures one outgoing send or edit.
type Sent struct {
	What any
	Opts []any
}

// Markup returns the reply markup attached to the send, if any.
func (s Sent) Markup() *tele.ReplyMarkup {
	for _, o := range s.Opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			return m
		}
	}
	return nil
}

// Text returns the sent payload as a string, or "".
func (s Sent) Text() string {
	t, _ := s.What.(string)
	return t
}

// Context is a recording stub of tele.Context.
type Context struct {
	tele.Context

	Upd    tele.Update
	Bucket map[string]any

	Sends     []Sent
	Edits     []Sent
	Responses []*tele.CallbackResponse
	Deleted   bool

	// SendErr, when set, makes Send and Reply fail without recording.
	SendErr error
}

// New returns an empty stub context.
func New() *Context {
	return &Context{Bucket: make(map[string]any)}
}

// WithMessage configures the stub as an incoming text message.
func (c *Context) WithMessage(chatID, userID int64, text string) *Context {
	c.Upd = tele.Update{Message: &tele.Message{
		Text:   text,
		Chat:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: userID},
	}}
	return c
}

// WithGroupMessage configures the stub as a message in a group chat.
func (c *Context) WithGroupMessage(chatID, userID int64, text string) *Context {
	c.WithMessage(chatID, userID, text)
	c.Upd.Message.Chat.Type = tele.ChatGroup
	return c
}

// WithCaption configures the stub as a media message carrying only a caption.
func (c *Context) WithCaption(chatID, userID int64, caption string) *Context {
	c.Upd = tele.Update{Message: &tele.Message{
		Caption: caption,
		Chat:    &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
		Sender:  &tele.User{ID: userID},
	}}
	return c
}

// WithCallback configures the stub as an incoming callback query carrying
// raw payload data.
func (c *Context) WithCallback(chatID, userID int64, data string) *Context {
	c.Upd = tele.Update{Callback: &tele.Callback{
		Data:   data,
		Sender: &tele.User{ID: userID},
		Message: &tele.Message{
			Chat: &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
		},
	}}
	return c
}

func (c *Context) Update() tele.Update { return c.Upd }

// Message mirrors telebot's fallback: on a callback update it returns the
// callback's origin message.
func (c *Context) Message() *tele.Message {
	if c.Upd.Message == nil && c.Upd.Callback != nil {
		return c.Upd.Callback.Message
	}
	return c.Upd.Message
}

func (c *Context) Callback() *tele.Callback { return c.Upd.Callback }

func (c *Context) Chat() *tele.Chat {
	switch {
	case c.Upd.Message != nil:
		return c.Upd.Message.Chat
	case c.Upd.Callback != nil && c.Upd.Callback.Message != nil:
		return c.Upd.Callback.Message.Chat
	}
	return nil
}

func (c *Context) Sender() *tele.User {
	switch {
	case c.Upd.Message != nil:
		return c.Upd.Message.Sender
	case c.Upd.Callback != nil:
		return c.Upd.Callback.Sender
	}
	return nil
}

func (c *Context) Text() string {
	if c.Upd.Message == nil {
		return ""
	}
	return c.Upd.Message.Text
}

func (c *Context) Data() string {
	if c.Upd.Callback != nil {
		return c.Upd.Callback.Data
	}
	return ""
}

func (c *Context) Get(key string) any { return c.Bucket[key] }

func (c *Context) Set(key string, val any) { c.Bucket[key] = val }

func (c *Context) Send(what any, opts ...any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.Sends = append(c.Sends, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error {
	return c.Send(what, opts...)
}

func (c *Context) Edit(what any, opts ...any) error {
	c.Edits = append(c.Edits, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) EditOrSend(what any, opts ...any) error {
	if c.Upd.Callback != nil {
		return c.Edit(what, opts...)
	}
	return c.Send(what, opts...)
}

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		resp = []*tele.CallbackResponse{{}}
	}
	c.Responses = append(c.Responses, resp...)
	return nil
}

func (c *Context) Delete() error {
	c.Deleted = true
	return nil
}

// LastSend returns the most recent send, or a zero Sent.
func (c *Context) LastSend() Sent {
	if len(c.Sends) == 0 {
		return Sent{}
	}
	return c.Sends[len(c.Sends)-1]
}
