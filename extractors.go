package extract

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// toolCallExtractor handles ModeToolCall: exactly one tool call whose name
// matches the target's schema name. Its argument payload is the source.
type toolCallExtractor struct{}

func (toolCallExtractor) Extract(resp *Response, schemaName string) (*Source, error) {
	c := resp.First()
	if c == nil {
		return nil, ErrEmptyResponse
	}
	if resp.Truncated() {
		return nil, &IncompleteOutputError{Response: resp}
	}

	switch n := len(c.ToolCalls); {
	case n == 0:
		return nil, fmt.Errorf("%w: expected a call to %q", ErrNoToolCall, schemaName)
	case n > 1:
		return nil, fmt.Errorf("%w: got %d, expected exactly one", ErrMultipleToolCalls, n)
	}

	call := c.ToolCalls[0]
	if call.FunctionCall == nil {
		return nil, fmt.Errorf("%w: tool call carries no function payload", ErrNoToolCall)
	}
	if call.FunctionCall.Name != schemaName {
		return nil, fmt.Errorf(
			"%w: got %q, expected %q",
			ErrToolNameMismatch, call.FunctionCall.Name, schemaName,
		)
	}

	return &Source{Text: call.FunctionCall.Arguments}, nil
}

// functionCallExtractor handles ModeFunctionCall: a single legacy function
// call whose name matches the target's schema name.
//
// Deprecated alongside [ModeFunctionCall].
type functionCallExtractor struct{}

func (functionCallExtractor) Extract(resp *Response, schemaName string) (*Source, error) {
	c := resp.First()
	if c == nil {
		return nil, ErrEmptyResponse
	}
	if resp.Truncated() {
		return nil, &IncompleteOutputError{Response: resp}
	}

	if c.FuncCall == nil {
		return nil, fmt.Errorf("%w: expected a call to %q", ErrNoFunctionCall, schemaName)
	}
	if c.FuncCall.Name != schemaName {
		return nil, fmt.Errorf(
			"%w: got %q, expected %q",
			ErrToolNameMismatch, c.FuncCall.Name, schemaName,
		)
	}

	return &Source{Text: c.FuncCall.Arguments}, nil
}

// fencePattern matches a fenced code block, capturing the language tag
// and the block contents.
var fencePattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_-]*)[ \t]*\n?(.*?)```")

// fencedBlock returns the contents of the first fenced code block in text
// whose language tag matches lang (case-insensitively) or is empty. When
// every fence carries some other tag, the first block is used anyway: a
// mis-tagged payload still decodes, the surrounding prose and backticks
// never do. Returns ("", false) only when text has no fences at all.
func fencedBlock(text, lang string) (string, bool) {
	matches := fencePattern.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		if m[1] == "" || strings.EqualFold(m[1], lang) {
			return strings.TrimSpace(m[2]), true
		}
	}
	if len(matches) > 0 {
		return strings.TrimSpace(matches[0][2]), true
	}
	return "", false
}

// jsonExtractor handles ModeJSON, ModeJSONSchema, and ModeMarkdownJSON:
// the message body is scanned for a fenced JSON block; if found its
// contents are the source, otherwise the raw text is used as-is.
type jsonExtractor struct{}

func (jsonExtractor) Extract(resp *Response, _ string) (*Source, error) {
	c := resp.First()
	if c == nil {
		return nil, ErrEmptyResponse
	}
	if resp.Truncated() {
		return nil, &IncompleteOutputError{Response: resp}
	}

	if block, ok := fencedBlock(c.Content, "json"); ok {
		return &Source{Text: block}, nil
	}
	return &Source{Text: strings.TrimSpace(c.Content)}, nil
}

// yamlExtractor handles ModeYAML: the message body (or a fenced yaml
// block) is decoded from YAML into a map used directly as the source.
type yamlExtractor struct{}

func (yamlExtractor) Extract(resp *Response, _ string) (*Source, error) {
	c := resp.First()
	if c == nil {
		return nil, ErrEmptyResponse
	}
	if resp.Truncated() {
		return nil, &IncompleteOutputError{Response: resp}
	}

	text := c.Content
	if block, ok := fencedBlock(text, "yaml"); ok {
		text = block
	}

	var obj map[string]any
	if err := yaml.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &Source{Object: obj}, nil
}

// nativeExtractor handles ModeNative: the provider-native argument map is
// used directly, with no re-serialization from text. Providers using this
// shape expose no stop reason alongside the map, so there is no
// truncation check.
type nativeExtractor struct{}

func (nativeExtractor) Extract(resp *Response, _ string) (*Source, error) {
	c := resp.First()
	if c == nil {
		return nil, ErrEmptyResponse
	}
	if c.NativeArgs == nil {
		return nil, ErrNoStructuredArgs
	}
	return &Source{Object: c.NativeArgs}, nil
}

// Compile-time checks that every strategy implements Extractor.
var (
	_ Extractor = toolCallExtractor{}
	_ Extractor = functionCallExtractor{}
	_ Extractor = jsonExtractor{}
	_ Extractor = yamlExtractor{}
	_ Extractor = nativeExtractor{}
)
