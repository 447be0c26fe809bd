package dialog

import "errors"

// Extraction failures. Both are recoverable: the user is asked to resend and
// the conversation stays on the same step.
var (
	// ErrNoInput means the update carried no usable answer for the step,
	// such as a media message without caption or a callback without value.
	ErrNoInput = errors.New("no input provided")

	// ErrUnsupportedUpdate means the update kind does not fit the step's
	// capture mechanism, such as a button press sent to a free-text step.
	ErrUnsupportedUpdate = errors.New("unsupported update kind")
)

// ConstraintError is a validation failure with a user-displayable message.
// Step is filled by the engine before replying so the user sees which
// question the rejection refers to.
type ConstraintError struct {
	Step    string
	Message string
}

func (e *ConstraintError) Error() string {
	if e.Step == "" {
		return e.Message
	}
	return e.Step + ": " + e.Message
}

// Code labels the failure class in handler summary logs.
func (e *ConstraintError) Code() string { return "CONSTRAINT_VIOLATION" }
