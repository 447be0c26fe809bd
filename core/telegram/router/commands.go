package router

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/commands"
	"dialogbot/core/telegram/filter"
)

// CommandRoutes builds one route per command, wrapping each handler with
// admin enforcement and argument parsing. A parse failure replies with the
// command's usage line instead of invoking the handler.
func CommandRoutes(cmds map[string]commands.Command) []Route {
	routes := make([]Route, 0, len(cmds))
	for name, def := range cmds {
		routes = append(routes, commandRoute(name, def))
		for _, alias := range def.Aliases {
			routes = append(routes, commandRoute(alias, def))
		}
	}
	return routes
}

func commandRoute(name string, def commands.Command) Route {
	f := filter.Command(name)
	if def.Private {
		f = filter.And(f, filter.Private)
	}

	handler := func(c tele.Context) error {
		if def.AdminOnly && !filter.Admin(c) {
			return c.Reply("This command is limited to administrators.")
		}
		if len(def.Args) > 0 {
			tokens := commandTokens(c)
			parsed, err := def.ParseArgs(tokens)
			if err != nil {
				return c.Reply(err.Error() + "\n" + def.Usage("/"+strings.TrimPrefix(name, "/")))
			}
			c.Set(commands.ArgsBucketKey, parsed)
		}
		return def.Handler(c)
	}

	return Route{Name: name, Filter: f, Handler: handler}
}

// commandTokens returns everything after the command word.
func commandTokens(c tele.Context) []string {
	m := c.Message()
	if m == nil {
		return nil
	}
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}
