package extract

import (
	"github.com/tmc/langchaingo/llms"
)

// Response is a provider-agnostic view of one chat-completion result.
// Transports construct it from whatever their provider returned; the
// extraction strategies only read the fields relevant to their [Mode].
type Response struct {
	// Choices contains the generated content choices. Extraction always
	// reads the first choice.
	Choices []*Choice

	// Model is the model identifier reported by the provider, if any.
	Model string

	// Raw contains the original provider-specific response payload.
	// The library never reads it; it is carried for caller debugging.
	Raw map[string]any
}

// Choice is a single content choice from the model.
type Choice struct {
	// Content is the textual content of the response.
	Content string

	// StopReason is the reason the model stopped generating. Extraction
	// checks it for truncation before reading anything else.
	StopReason string

	// FuncCall is non-nil when the model answered with a legacy function
	// call.
	FuncCall *llms.FunctionCall

	// ToolCalls is the list of tool calls the model asks to invoke.
	ToolCalls []llms.ToolCall

	// NativeArgs holds provider-native structured arguments that arrive
	// already decoded to a map rather than as text (used by ModeNative).
	NativeArgs map[string]any
}

// Stop reasons that indicate the provider cut off output at a length
// limit before the structured payload was complete.
const (
	stopReasonLength    = "length"
	stopReasonMaxTokens = "max_tokens"
)

// First returns the first choice, or nil if the response has none.
func (r *Response) First() *Choice {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return r.Choices[0]
}

// StopReason returns the first choice's stop reason, or "" if there is none.
func (r *Response) StopReason() string {
	c := r.First()
	if c == nil {
		return ""
	}
	return c.StopReason
}

// Truncated reports whether the first choice's stop reason indicates the
// output was cut off by a length limit.
func (r *Response) Truncated() bool {
	switch r.StopReason() {
	case stopReasonLength, stopReasonMaxTokens:
		return true
	}
	return false
}

// TextResponse builds a Response with a single text choice. Convenient for
// transports and tests using ModeJSON, ModeMarkdownJSON, or ModeYAML.
func TextResponse(content string) *Response {
	return &Response{
		Choices: []*Choice{{Content: content}},
	}
}

// ToolCallResponse builds a Response with a single tool call invoking name
// with the given JSON argument payload.
func ToolCallResponse(name, arguments string) *Response {
	return &Response{
		Choices: []*Choice{{
			ToolCalls: []llms.ToolCall{{
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      name,
					Arguments: arguments,
				},
			}},
		}},
	}
}

// NativeResponse builds a Response carrying provider-native structured
// arguments for ModeNative.
func NativeResponse(args map[string]any) *Response {
	return &Response{
		Choices: []*Choice{{NativeArgs: args}},
	}
}
