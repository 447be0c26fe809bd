package users

import tele "gopkg.in/telebot.v4"

// BucketKey is where middleware stores the resolved User on the request context.
const BucketKey = "user"

// Attach stores the resolved user on the telebot context for later handlers.
func Attach(c tele.Context, u User) {
	c.Set(BucketKey, u)
}

// FromContext returns the user resolved by middleware, if any.
func FromContext(c tele.Context) (User, bool) {
	u, ok := c.Get(BucketKey).(User)
	return u, ok
}

// IsAdmin reports whether the resolved request user carries the admin flag.
func IsAdmin(c tele.Context) bool {
	u, ok := FromContext(c)
	return ok && u.IsAdmin
}
