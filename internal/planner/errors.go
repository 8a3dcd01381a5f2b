package planner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteProfile is the only generation error callers see.
	ErrIncompleteProfile = errors.New("incomplete profile")

	ErrAIUnavailable       = errors.New("ai unavailable")
	ErrNoJSONFound         = errors.New("no json found in ai response")
	ErrSchema              = errors.New("ai response does not match plan schema")
	ErrUniquenessExhausted = errors.New("uniqueness retries exhausted")
)

type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteProfile, strings.Join(e.Missing, ", "))
}

func (e *IncompleteProfileError) Is(target error) bool {
	return target == ErrIncompleteProfile
}

// SchemaError carries the path of the field where decoding failed.
type SchemaError struct {
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "schema error: " + e.Msg
	}
	return fmt.Sprintf("schema error at %s: %s", e.Path, e.Msg)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func schemaErrorf(path, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// failureReason: метка для логов и метрик.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrAIUnavailable):
		return "ai_unavailable"
	case errors.Is(err, ErrNoJSONFound):
		return "no_json"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrUniquenessExhausted):
		return "uniqueness_exhausted"
	default:
		return "other"
	}
}
