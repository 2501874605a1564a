package extract

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/rickchristie/extract/schema"
	"github.com/rickchristie/extract/validate"
)

// Option configures a [Parse] call.
type Option func(*parseOptions)

type parseOptions struct {
	strict     bool
	schemaName string
	validation validate.Context
}

// WithStrict enables strict decoding: unknown fields, structural
// deviations, and raw control characters in the payload are rejected, and
// the decoded value is validated against the target type's compiled JSON
// Schema. The default is lenient decoding.
func WithStrict(strict bool) Option {
	return func(o *parseOptions) {
		o.strict = strict
	}
}

// WithSchemaName overrides the schema name matched against tool and
// function call names. By default the name is derived from the target
// type via [schema.Describe].
func WithSchemaName(name string) Option {
	return func(o *parseOptions) {
		o.schemaName = name
	}
}

// WithValidationContext stores a validation context on the parse call.
// [Parse] itself never reads it; [ParseAndValidate] hands it to the
// asynchronous validators when its vc argument is nil.
func WithValidationContext(vc validate.Context) Option {
	return func(o *parseOptions) {
		o.validation = vc
	}
}

// Parse extracts the structured payload for the given mode from resp and
// decodes it into a new T.
//
// Failure shapes:
//   - unknown mode: error wrapping [ErrUnknownMode]
//   - truncated output: [*IncompleteOutputError] carrying resp
//   - zero/multiple/mismatched tool calls: errors wrapping the sentinel
//     extraction errors in this package
//   - undecodable payload: error wrapping [ErrInvalidJSON] or
//     [ErrInvalidYAML]
//   - strict structural violation: [*schema.ValidationError]
//
// On success, if T embeds [Meta], the returned instance carries resp as a
// non-schema back-reference.
func Parse[T any](resp *Response, mode Mode, opts ...Option) (*T, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	ex, err := ExtractorFor(mode)
	if err != nil {
		return nil, err
	}

	name := o.schemaName
	if name == "" {
		fs, err := schema.Describe(reflect.TypeFor[T]())
		if err != nil {
			return nil, err
		}
		name = fs.Name
	}

	src, err := ex.Extract(resp, name)
	if err != nil {
		return nil, err
	}

	text := src.Text
	if src.Object != nil {
		// Go cannot populate a struct directly from a map without a
		// reflection mapper; route through the codec once.
		data, err := json.Marshal(src.Object)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		text = string(data)
	}

	var out T
	if o.strict {
		if err := decodeStrict(text, &out, reflect.TypeFor[T]()); err != nil {
			return nil, err
		}
	} else {
		if err := decodeLenient(text, &out); err != nil {
			return nil, err
		}
	}

	if mc, ok := any(&out).(metaCarrier); ok {
		mc.attach(resp)
	}
	return &out, nil
}

// ParseAndValidate parses resp like [Parse], then runs every asynchronous
// validator registered for T (and for types nested inside it) with the
// given validation context. A nil vc falls back to the context stored by
// [WithValidationContext]. Parse failures abort before validation;
// validator failures are returned as data, never as an error.
func ParseAndValidate[T any](
	ctx context.Context,
	resp *Response,
	mode Mode,
	vc validate.Context,
	opts ...Option,
) (*T, []validate.Failure, error) {
	out, err := Parse[T](resp, mode, opts...)
	if err != nil {
		return nil, nil, err
	}

	if vc == nil {
		var o parseOptions
		for _, opt := range opts {
			opt(&o)
		}
		vc = o.validation
	}

	failures, err := validate.Run(ctx, out, vc)
	if err != nil {
		return nil, nil, err
	}
	return out, failures, nil
}

// decodeStrict rejects raw control characters, unknown fields, and any
// structural deviation from the target type's schema.
func decodeStrict(text string, out any, t reflect.Type) error {
	if hasRawControlChars(text) {
		return ErrControlCharacters
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	compiled, err := schema.CompiledFor(t)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return compiled.Validate(doc)
}

// decodeLenient tolerates raw control characters inside string literals by
// escaping them before decoding.
func decodeLenient(text string, out any) error {
	if err := json.Unmarshal([]byte(sanitizeControlChars(text)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// hasRawControlChars reports whether text contains raw control characters
// inside string literals, or control characters other than JSON whitespace
// between tokens.
func hasRawControlChars(text string) bool {
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r < 0x20:
				return true
			}
			continue
		}
		switch {
		case r == '"':
			inString = true
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			return true
		}
	}
	return false
}

// sanitizeControlChars escapes raw control characters found inside string
// literals so that lenient decoding accepts model output that embeds
// unescaped newlines or tabs in string values.
func sanitizeControlChars(text string) string {
	if !strings.ContainsFunc(text, func(r rune) bool { return r < 0x20 }) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	inString := false
	escaped := false
	for _, r := range text {
		if !inString {
			if r == '"' {
				inString = true
			}
			sb.WriteRune(r)
			continue
		}
		switch {
		case escaped:
			escaped = false
			sb.WriteRune(r)
		case r == '\\':
			escaped = true
			sb.WriteRune(r)
		case r == '"':
			inString = false
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
