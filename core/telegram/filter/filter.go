// Package filter provides composable update predicates used by the router to
// decide which handler owns an incoming update.
package filter

import (
	"regexp"
	"strings"

	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/callbacks"
	"dialogbot/core/telegram/state"
	"dialogbot/core/users"
)

// Filter reports whether an update matches. Filters must not mutate the
// context.
type Filter func(c tele.Context) bool

// And matches when every given filter matches. With no arguments it matches
// everything.
func And(filters ...Filter) Filter {
	return func(c tele.Context) bool {
		for _, f := range filters {
			if !f(c) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one given filter matches.
func Or(filters ...Filter) Filter {
	return func(c tele.Context) bool {
		for _, f := range filters {
			if f(c) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f Filter) Filter {
	return func(c tele.Context) bool {
		return !f(c)
	}
}

// Any matches every update.
func Any() Filter {
	return func(tele.Context) bool { return true }
}

// Private matches updates originating from a one-on-one chat.
func Private(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && chat.Type == tele.ChatPrivate
}

// Admin matches when the resolved request user carries the admin flag.
func Admin(c tele.Context) bool {
	return users.IsAdmin(c)
}

// Text matches messages that carry text or a caption. Callback updates do
// not count: their Message() is the callback's origin message, not input.
func Text(c tele.Context) bool {
	if c.Callback() != nil {
		return false
	}
	m := c.Message()
	return m != nil && (m.Text != "" || m.Caption != "")
}

// Command matches "/name" and "/name@botname" messages, case-insensitive on
// the command itself.
func Command(name string) Filter {
	name = strings.TrimPrefix(strings.ToLower(name), "/")
	return func(c tele.Context) bool {
		if c.Callback() != nil {
			return false
		}
		m := c.Message()
		if m == nil {
			return false
		}
		text := m.Text
		if text == "" {
			text = m.Caption
		}
		if !strings.HasPrefix(text, "/") {
			return false
		}
		head := strings.Fields(text)[0]
		head = strings.TrimPrefix(strings.ToLower(head), "/")
		if at := strings.IndexByte(head, '@'); at >= 0 {
			head = head[:at]
		}
		return head == name
	}
}

// CallbackData matches callback queries whose action equals the given id,
// with or without a packed parameter tail. The id is matched literally and
// case-insensitively.
func CallbackData(action string) Filter {
	re := regexp.MustCompile(`(?i)^(` + regexp.QuoteMeta(action) + `|` + regexp.QuoteMeta(action) + `\?.*)$`)
	return func(c tele.Context) bool {
		cb := c.Callback()
		if cb == nil {
			return false
		}
		return re.MatchString(callbacks.Raw(c))
	}
}

// InState matches by the conversation step loaded by state middleware.
// A name of "*" matches any active step. Passing no names (or only empty
// strings) matches the idle state, where no step is set.
func InState(names ...string) Filter {
	active := make([]string, 0, len(names))
	wildcard := false
	for _, n := range names {
		switch n {
		case "":
		case "*":
			wildcard = true
		default:
			active = append(active, n)
		}
	}
	matchIdle := len(active) == 0 && !wildcard

	return func(c tele.Context) bool {
		cv, ok := state.FromContext(c)
		if !ok {
			return matchIdle
		}
		if cv.Name == nil {
			return matchIdle
		}
		if wildcard {
			return true
		}
		for _, n := range active {
			if *cv.Name == n {
				return true
			}
		}
		return false
	}
}

// Idle matches users with no active conversation.
func Idle() Filter {
	return InState()
}
