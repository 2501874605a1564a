package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Compiled pairs a raw schema map with its compiled validator.
type Compiled struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (c *Compiled) Raw() map[string]any {
	if c == nil {
		return nil
	}
	return c.raw
}

// Validate validates decoded JSON data against the schema.
// Returns nil if valid, or a [*ValidationError] describing the failure.
func (c *Compiled) Validate(data any) error {
	if c == nil || c.compiled == nil {
		return nil
	}
	if err := c.compiled.Validate(data); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Compiled with a validator.
// Returns an error if the schema is invalid.
func Compile(raw map[string]any) (*Compiled, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Compiled{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Compiled {
	c, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return c
}

var compiledCache sync.Map // reflect.Type -> *Compiled

// CompiledFor returns the compiled parameter schema of t, memoized per
// type. Used by strict parsing to validate decoded payloads structurally.
func CompiledFor(t reflect.Type) (*Compiled, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := compiledCache.Load(t); ok {
		return cached.(*Compiled), nil
	}

	fs, err := Describe(t)
	if err != nil {
		return nil, err
	}
	compiled, err := Compile(fs.Parameters)
	if err != nil {
		return nil, err
	}

	compiledCache.Store(t, compiled)
	return compiled, nil
}
