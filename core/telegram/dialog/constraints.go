package dialog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ResultKind is the type an answer is cast to before constraint checks.
type ResultKind int

const (
	KindString ResultKind = iota
	KindInt
	KindFloat
	KindBool
)

// Constraints declares the per-step validation rules. Nil pointer fields are
// unchecked. Numeric bounds apply after the cast; length and pattern rules
// apply to the raw string.
type Constraints struct {
	Gt         *float64
	Ge         *float64
	Lt         *float64
	Le         *float64
	MultipleOf *float64
	MinLength  *int
	MaxLength  *int
	Pattern    string

	re *regexp.Regexp
}

// compile pre-builds the pattern so a malformed regex fails at dialog
// construction, not on the first user answer.
func (cs *Constraints) compile() error {
	if cs == nil || cs.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile(cs.Pattern)
	if err != nil {
		return fmt.Errorf("constraint pattern %q: %w", cs.Pattern, err)
	}
	cs.re = re
	return nil
}

// validateAndCast casts raw to the target kind and applies the constraints,
// returning the typed value or a ConstraintError describing the first
// violated rule.
func validateAndCast(raw string, kind ResultKind, cs *Constraints) (any, error) {
	if cs != nil {
		if cs.MinLength != nil && utf8.RuneCountInString(raw) < *cs.MinLength {
			return nil, violation("ensure this value has at least %d characters", *cs.MinLength)
		}
		if cs.MaxLength != nil && utf8.RuneCountInString(raw) > *cs.MaxLength {
			return nil, violation("ensure this value has at most %d characters", *cs.MaxLength)
		}
		if cs.Pattern != "" {
			re := cs.re
			if re == nil {
				var err error
				if re, err = regexp.Compile(cs.Pattern); err != nil {
					return nil, violation("string does not match regex %q", cs.Pattern)
				}
			}
			if !re.MatchString(raw) {
				return nil, violation("string does not match regex %q", cs.Pattern)
			}
		}
	}

	switch kind {
	case KindString:
		return raw, nil

	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, violation("value is not a valid integer")
		}
		if err := checkNumeric(float64(n), cs); err != nil {
			return nil, err
		}
		return n, nil

	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, violation("value is not a valid float")
		}
		if err := checkNumeric(f, cs); err != nil {
			return nil, err
		}
		return f, nil

	case KindBool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, violation("value could not be parsed to a boolean")
		}
		return b, nil
	}
	return nil, violation("unsupported result kind")
}

func checkNumeric(v float64, cs *Constraints) error {
	if cs == nil {
		return nil
	}
	if cs.Gt != nil && !(v > *cs.Gt) {
		return violation("ensure this value is greater than %s", formatNumber(*cs.Gt))
	}
	if cs.Ge != nil && !(v >= *cs.Ge) {
		return violation("ensure this value is greater than or equal to %s", formatNumber(*cs.Ge))
	}
	if cs.Lt != nil && !(v < *cs.Lt) {
		return violation("ensure this value is less than %s", formatNumber(*cs.Lt))
	}
	if cs.Le != nil && !(v <= *cs.Le) {
		return violation("ensure this value is less than or equal to %s", formatNumber(*cs.Le))
	}
	if cs.MultipleOf != nil && *cs.MultipleOf != 0 {
		q := v / *cs.MultipleOf
		if math.Abs(q-math.Round(q)) > 1e-9 {
			return violation("ensure this value is a multiple of %s", formatNumber(*cs.MultipleOf))
		}
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", raw)
}

func violation(format string, args ...any) *ConstraintError {
	return &ConstraintError{Message: fmt.Sprintf(format, args...)}
}

// formatNumber renders bounds without a trailing ".0" for whole numbers.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// capitalize uppercases the first letter of a user-facing message.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
