// Package callbacks implements the callback payload wire format used by
// inline keyboards: an action identifier optionally followed by a URL
// query-string, e.g. "confirm?v=yes&page=2". An action with no parameters
// carries no trailing '?'.
package callbacks

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Pack encodes an action identifier and parameters into callback data.
func Pack(action string, params map[string]string) string {
	if len(params) == 0 {
		return action
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return action + "?" + values.Encode()
}

// PackOrdered encodes parameters in the given key order. Telegram limits
// callback data to 64 bytes, so deterministic ordering keeps truncation
// predictable for callers that care.
func PackOrdered(action string, params map[string]string) string {
	if len(params) == 0 {
		return action
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(action)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// Unpack splits callback data into the action identifier and its decoded
// parameter map. Data without a query part yields an empty map.
func Unpack(data string) (string, map[string]string) {
	data = normalize(data)
	action, query, found := strings.Cut(data, "?")
	params := map[string]string{}
	if !found || query == "" {
		return action, params
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return action, params
	}
	for k := range values {
		params[k] = values.Get(k)
	}
	return action, params
}

// Raw returns the normalized callback payload of the current update, or "".
func Raw(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	return normalize(cb.Data)
}

// Action returns the action identifier of the current callback, or "".
func Action(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	action, _ := Unpack(cb.Data)
	return action
}

// Params returns the decoded parameter map of the current callback.
func Params(c tele.Context) map[string]string {
	cb := c.Callback()
	if cb == nil {
		return map[string]string{}
	}
	_, params := Unpack(cb.Data)
	return params
}

// Param returns a single decoded parameter and whether it was present.
func Param(c tele.Context, key string) (string, bool) {
	params := Params(c)
	v, ok := params[key]
	return v, ok
}

// ParamInt parses a parameter as int.
func ParamInt(c tele.Context, key string) (int, error) {
	v, ok := Param(c, key)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(v)
}

// ParamInt64 parses a parameter as int64.
func ParamInt64(c tele.Context, key string) (int64, error) {
	v, ok := Param(c, key)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(v, 10, 64)
}

// normalize strips the telebot unique-button framing ("\f<unique>|<data>")
// when present, so raw and telebot-framed payloads decode the same way.
func normalize(data string) string {
	framed := false
	if rest, ok := strings.CutPrefix(data, "\f"); ok {
		data, framed = rest, true
	} else if rest, ok := strings.CutPrefix(data, "\\f"); ok {
		data, framed = rest, true
	}
	if !framed {
		return data
	}
	if _, payload, found := strings.Cut(data, "|"); found {
		return payload
	}
	return data
}
