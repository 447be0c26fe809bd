package commands

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ArgKind enumerates supported argument value types.
type ArgKind int

const (
	// KindString accepts any token as-is.
	KindString ArgKind = iota
	// KindInt parses the token as a 64-bit integer.
	KindInt
	// KindFloat parses the token as a float64.
	KindFloat
	// KindBool parses true/1/yes and false/0/no.
	KindBool
)

// Arg declares one positional command argument.
type Arg struct {
	Name        string
	Kind        ArgKind
	Required    bool
	Default     string
	Description string
	// Variadic consumes all remaining tokens into a slice. Must be last.
	Variadic bool
}

// ArgsBucketKey is the tele.Context key the router stores parsed args under.
const ArgsBucketKey = "args"

// ParseArgs validates raw tokens against the declared schema and returns the
// typed argument map keyed by argument name.
func (cmd Command) ParseArgs(tokens []string) (map[string]any, error) {
	parsed := make(map[string]any, len(cmd.Args))
	idx := 0
	for _, arg := range cmd.Args {
		if arg.Variadic {
			var values []any
			for ; idx < len(tokens); idx++ {
				v, err := castToken(tokens[idx], arg.Kind)
				if err != nil {
					return nil, fmt.Errorf("invalid value for %s: %w", strings.ToUpper(arg.Name), err)
				}
				values = append(values, v)
			}
			if len(values) == 0 && arg.Required {
				return nil, fmt.Errorf("%s requires at least one value", strings.ToUpper(arg.Name))
			}
			parsed[arg.Name] = values
			continue
		}

		if idx >= len(tokens) {
			if arg.Required {
				return nil, fmt.Errorf("%s is required", strings.ToUpper(arg.Name))
			}
			if arg.Default != "" {
				v, err := castToken(arg.Default, arg.Kind)
				if err != nil {
					return nil, fmt.Errorf("invalid default for %s: %w", strings.ToUpper(arg.Name), err)
				}
				parsed[arg.Name] = v
			}
			continue
		}

		v, err := castToken(tokens[idx], arg.Kind)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", strings.ToUpper(arg.Name), err)
		}
		parsed[arg.Name] = v
		idx++
	}
	return parsed, nil
}

// Syntax renders the positional argument synopsis, e.g. "USERNAME [PIN]".
func (cmd Command) Syntax() string {
	parts := make([]string, 0, len(cmd.Args))
	for _, arg := range cmd.Args {
		name := strings.ToUpper(arg.Name)
		if arg.Variadic {
			name = fmt.Sprintf("%s_1 %s_2 ... %s_N", name, name, name)
		}
		if !arg.Required {
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

// Usage renders a user-facing description of the command and its arguments.
func (cmd Command) Usage(name string) string {
	var b strings.Builder
	if cmd.Description != "" {
		b.WriteString(cmd.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("Usage:\n")
	b.WriteString(name)
	if syntax := cmd.Syntax(); syntax != "" {
		b.WriteByte(' ')
		b.WriteString(syntax)
	}

	var params []string
	for _, arg := range cmd.Args {
		if arg.Description == "" {
			continue
		}
		line := strings.ToUpper(arg.Name)
		if !arg.Required {
			optional := "Optional"
			if arg.Default != "" {
				optional += ", Default: " + arg.Default
			}
			line += " (" + optional + ")"
		}
		line += " - " + arg.Description
		params = append(params, line)
	}
	if len(params) > 0 {
		b.WriteString("\n\nParameters:\n")
		b.WriteString(strings.Join(params, "\n"))
	}
	return strings.TrimSpace(b.String())
}

// ArgsFrom returns the parsed argument map stored by the command router.
func ArgsFrom(c tele.Context) map[string]any {
	if v := c.Get(ArgsBucketKey); v != nil {
		if args, ok := v.(map[string]any); ok {
			return args
		}
	}
	return map[string]any{}
}

func castToken(token string, kind ArgKind) (any, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", token)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", token)
		}
		return f, nil
	case KindBool:
		switch strings.ToLower(token) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a boolean", token)
	default:
		return token, nil
	}
}
