package extract

import "fmt"

// Source is the structured payload an extraction strategy pulled out of a
// response: either raw text still to be decoded, or a map that arrived
// already structured.
type Source struct {
	// Text is the raw payload text (JSON, or the contents of a fenced
	// code block). Empty when Object is set.
	Text string

	// Object is a provider-native argument map used directly as the
	// source, with no re-extraction from text.
	Object map[string]any
}

// Extractor pulls the structured source for one [Mode] out of a response.
//
// Strategies that can observe a stop reason check for truncation first and
// fail with [*IncompleteOutputError] before attempting extraction.
// schemaName is the target type's schema name, used by strategies that
// must match it against a tool or function call name.
type Extractor interface {
	Extract(resp *Response, schemaName string) (*Source, error)
}

// extractors maps each Mode to its extraction strategy. Adding a provider
// shape means adding a strategy here, not growing a dispatcher.
var extractors = map[Mode]Extractor{
	ModeToolCall:     toolCallExtractor{},
	ModeFunctionCall: functionCallExtractor{},
	ModeJSON:         jsonExtractor{},
	ModeJSONSchema:   jsonExtractor{},
	ModeMarkdownJSON: jsonExtractor{},
	ModeNative:       nativeExtractor{},
	ModeYAML:         yamlExtractor{},
}

// ExtractorFor returns the extraction strategy for the given mode.
func ExtractorFor(mode Mode) (Extractor, error) {
	ex, ok := extractors[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return ex, nil
}
