package extract

import (
	"errors"
	"fmt"
)

// Extraction errors. All are wrapped with context (mode, tool names, counts)
// before being returned; match with [errors.Is].
var (
	ErrUnknownMode       = errors.New("unknown extraction mode")
	ErrEmptyResponse     = errors.New("response has no choices")
	ErrNoToolCall        = errors.New("no tool call in response")
	ErrMultipleToolCalls = errors.New("multiple tool calls in response")
	ErrNoFunctionCall    = errors.New("no function call in response")
	ErrToolNameMismatch  = errors.New("tool call name does not match schema")
	ErrNoStructuredArgs  = errors.New("no native structured arguments in response")
	ErrInvalidJSON       = errors.New("invalid JSON in response content")
	ErrInvalidYAML       = errors.New("invalid YAML in response content")
	ErrControlCharacters = errors.New("raw control characters in strict payload")
)

// IncompleteOutputError signals that the provider cut off output at a
// length limit before a complete structured payload was produced. It
// always carries the original response so the caller can decide to retry
// with a larger budget.
type IncompleteOutputError struct {
	Response *Response
}

func (e *IncompleteOutputError) Error() string {
	return fmt.Sprintf("extract: output truncated before completion (stop reason %q)", e.Response.StopReason())
}
