package extract

// Mode identifies which provider response shape and extraction rule applies
// to a [Response]. It is supplied by the caller per request; the library
// never chooses a provider.
type Mode string

const (
	// ModeToolCall expects exactly one tool call whose name matches the
	// target type's schema name. The tool call's argument payload is the
	// source text. This is the shape returned by OpenAI-style tool use.
	ModeToolCall Mode = "tool_call"

	// ModeFunctionCall expects a single legacy function call whose name
	// matches the target type's schema name.
	//
	// Deprecated: function calls are deprecated by providers in favor of
	// tool calls. Use ModeToolCall.
	ModeFunctionCall Mode = "function_call"

	// ModeJSON reads the message body as JSON. If the body wraps the JSON
	// in a fenced code block, the block's contents are used instead.
	ModeJSON Mode = "json"

	// ModeJSONSchema behaves like ModeJSON; it exists for callers that
	// requested schema-constrained decoding from the provider.
	ModeJSONSchema Mode = "json_schema"

	// ModeMarkdownJSON behaves like ModeJSON for providers prompted to
	// answer with a ```json fenced block inside prose.
	ModeMarkdownJSON Mode = "md_json"

	// ModeNative uses the provider-native argument map attached to the
	// response choice directly, without re-extracting from text.
	ModeNative Mode = "native"

	// ModeYAML reads the message body (or a fenced ```yaml block) as YAML.
	ModeYAML Mode = "yaml"
)
