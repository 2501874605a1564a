package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestExtractorFor(t *testing.T) {
	type input struct {
		mode Mode
	}

	type expected struct {
		err error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "tool call mode resolves",
			input:    input{mode: ModeToolCall},
			expected: expected{},
		},
		{
			name:     "json schema mode resolves",
			input:    input{mode: ModeJSONSchema},
			expected: expected{},
		},
		{
			name:     "yaml mode resolves",
			input:    input{mode: ModeYAML},
			expected: expected{},
		},
		{
			name:     "unknown mode fails",
			input:    input{mode: Mode("telepathy")},
			expected: expected{err: ErrUnknownMode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := ExtractorFor(tt.input.mode)

			if tt.expected.err != nil {
				require.ErrorIs(t, err, tt.expected.err)
				assert.Contains(t, err.Error(), string(tt.input.mode))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, ex)
		})
	}
}

func TestToolCallExtractor(t *testing.T) {
	type input struct {
		resp       *Response
		schemaName string
	}

	type expected struct {
		text string
		err  error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "single matching tool call",
			input: input{
				resp:       ToolCallResponse("Person", `{"name": "Ada", "age": 30}`),
				schemaName: "Person",
			},
			expected: expected{text: `{"name": "Ada", "age": 30}`},
		},
		{
			name: "zero tool calls",
			input: input{
				resp:       TextResponse("no calls here"),
				schemaName: "Person",
			},
			expected: expected{err: ErrNoToolCall},
		},
		{
			name: "two tool calls fail regardless of contents",
			input: input{
				resp: &Response{Choices: []*Choice{{
					ToolCalls: []llms.ToolCall{
						{FunctionCall: &llms.FunctionCall{Name: "Person", Arguments: `{}`}},
						{FunctionCall: &llms.FunctionCall{Name: "Person", Arguments: `{}`}},
					},
				}}},
				schemaName: "Person",
			},
			expected: expected{err: ErrMultipleToolCalls},
		},
		{
			name: "name mismatch",
			input: input{
				resp:       ToolCallResponse("Animal", `{}`),
				schemaName: "Person",
			},
			expected: expected{err: ErrToolNameMismatch},
		},
		{
			name: "empty response",
			input: input{
				resp:       &Response{},
				schemaName: "Person",
			},
			expected: expected{err: ErrEmptyResponse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := toolCallExtractor{}.Extract(tt.input.resp, tt.input.schemaName)

			if tt.expected.err != nil {
				require.ErrorIs(t, err, tt.expected.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.text, src.Text)
		})
	}
}

func TestFunctionCallExtractor(t *testing.T) {
	resp := &Response{Choices: []*Choice{{
		FuncCall: &llms.FunctionCall{Name: "Person", Arguments: `{"name": "Ada"}`},
	}}}

	src, err := functionCallExtractor{}.Extract(resp, "Person")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Ada"}`, src.Text)

	_, err = functionCallExtractor{}.Extract(resp, "Animal")
	assert.ErrorIs(t, err, ErrToolNameMismatch)

	_, err = functionCallExtractor{}.Extract(TextResponse("text only"), "Person")
	assert.ErrorIs(t, err, ErrNoFunctionCall)
}

func TestJSONExtractor(t *testing.T) {
	type input struct {
		content string
	}

	type expected struct {
		text string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "raw JSON body",
			input:    input{content: `{"name": "Bob", "age": 25}`},
			expected: expected{text: `{"name": "Bob", "age": 25}`},
		},
		{
			name:     "fenced json block",
			input:    input{content: "Here you go:\n```json\n{\"name\": \"Bob\", \"age\": 25}\n```\nLet me know!"},
			expected: expected{text: `{"name": "Bob", "age": 25}`},
		},
		{
			name:     "fenced block without language tag",
			input:    input{content: "```\n{\"name\": \"Bob\"}\n```"},
			expected: expected{text: `{"name": "Bob"}`},
		},
		{
			name:     "fence tag matched case-insensitively",
			input:    input{content: "```JSON\n{\"name\": \"Bob\"}\n```"},
			expected: expected{text: `{"name": "Bob"}`},
		},
		{
			name:     "mis-tagged fence used as fallback",
			input:    input{content: "Here:\n```javascript\n{\"name\": \"Bob\"}\n```\nDone."},
			expected: expected{text: `{"name": "Bob"}`},
		},
		{
			name:     "json fence preferred over earlier mis-tagged fence",
			input:    input{content: "```python\npass\n```\n```json\n{\"name\": \"Bob\"}\n```"},
			expected: expected{text: `{"name": "Bob"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := jsonExtractor{}.Extract(TextResponse(tt.input.content), "Person")

			require.NoError(t, err)
			assert.Equal(t, tt.expected.text, src.Text)
		})
	}
}

func TestYAMLExtractor(t *testing.T) {
	type input struct {
		content string
	}

	type expected struct {
		obj map[string]any
		err error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:  "bare yaml body",
			input: input{content: "name: Bob\nage: 25\n"},
			expected: expected{
				obj: map[string]any{"name": "Bob", "age": 25},
			},
		},
		{
			name:  "fenced yaml block",
			input: input{content: "Sure:\n```yaml\nname: Bob\nage: 25\n```"},
			expected: expected{
				obj: map[string]any{"name": "Bob", "age": 25},
			},
		},
		{
			name:     "invalid yaml",
			input:    input{content: ": : :\n\t- broken"},
			expected: expected{err: ErrInvalidYAML},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := yamlExtractor{}.Extract(TextResponse(tt.input.content), "Person")

			if tt.expected.err != nil {
				require.ErrorIs(t, err, tt.expected.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.obj, src.Object)
		})
	}
}

func TestNativeExtractor(t *testing.T) {
	args := map[string]any{"name": "Ada", "age": 30}

	src, err := nativeExtractor{}.Extract(NativeResponse(args), "Person")
	require.NoError(t, err)
	assert.Equal(t, args, src.Object)

	_, err = nativeExtractor{}.Extract(TextResponse("text"), "Person")
	assert.ErrorIs(t, err, ErrNoStructuredArgs)
}

func TestTruncationShortCircuitsExtraction(t *testing.T) {
	// Every mode that can observe a stop reason must fail with the
	// truncation error before attempting extraction.
	modes := []Mode{ModeToolCall, ModeFunctionCall, ModeJSON, ModeJSONSchema, ModeMarkdownJSON, ModeYAML}

	for _, stopReason := range []string{"length", "max_tokens"} {
		for _, mode := range modes {
			t.Run(string(mode)+"/"+stopReason, func(t *testing.T) {
				resp := ToolCallResponse("Person", `{"name": "Ada"}`)
				resp.Choices[0].StopReason = stopReason

				ex, err := ExtractorFor(mode)
				require.NoError(t, err)

				_, err = ex.Extract(resp, "Person")

				var incomplete *IncompleteOutputError
				require.ErrorAs(t, err, &incomplete)
				assert.Same(t, resp, incomplete.Response)
			})
		}
	}
}

func TestResponseTruncated(t *testing.T) {
	assert.False(t, TextResponse("done").Truncated())
	assert.False(t, (&Response{}).Truncated())

	resp := TextResponse("cut off")
	resp.Choices[0].StopReason = "length"
	assert.True(t, resp.Truncated())

	resp.Choices[0].StopReason = "stop"
	assert.False(t, resp.Truncated())
}

func TestIncompleteOutputErrorMessage(t *testing.T) {
	resp := TextResponse("partial")
	resp.Choices[0].StopReason = "max_tokens"

	err := &IncompleteOutputError{Response: resp}
	assert.Contains(t, err.Error(), "max_tokens")
	assert.False(t, errors.Is(err, ErrInvalidJSON))
}
