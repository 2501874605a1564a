package schema

import (
	"fmt"
	"reflect"
)

// FunctionSchema is the function-call view of a type: the shape most
// chat-completion APIs expect when advertising a tool.
type FunctionSchema struct {
	Name        string
	Description string

	// Parameters is the type's structural schema with required recomputed
	// as the sorted set of field names lacking a default value.
	Parameters map[string]any
}

// ToolSchema is the provider-native view: same name and description, with
// the full nested schema under input_schema instead of parameters.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Describer lets a type carry an explicit schema description. It takes
// precedence over registered doc text.
type Describer interface {
	SchemaDescription() string
}

var describerType = reflect.TypeFor[Describer]()

// Describe produces the function-call schema view of t.
//
// The description is taken from an explicit [Describer] implementation if
// present, else the short description of the type's registered doc text,
// else a generated fallback naming the type. Field descriptions from the
// structural schema always win; doc-text parameter entries backfill only
// fields that have none.
func Describe(t reflect.Type) (*FunctionSchema, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	d, err := Derive(t)
	if err != nil {
		return nil, err
	}
	if d.Kind != KindObject || d.GoType == nil || d.GoType.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: t, Reason: "only structured types can be described"}
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}

	doc := docFor(t)
	description := describerDescription(t)
	if description == "" && doc != nil {
		description = doc.Short
	}
	if description == "" {
		description = fmt.Sprintf(
			"Correctly extracted `%s` with all the required parameters with correct types",
			name,
		)
	}

	parameters := d.Map()
	if doc != nil {
		backfillParamDocs(parameters, doc)
	}

	return &FunctionSchema{
		Name:        name,
		Description: description,
		Parameters:  parameters,
	}, nil
}

// DescribeNative produces the provider-native schema view of t. It reuses
// the same name and description as [Describe] but substitutes the full
// nested schema under input_schema, without doc-text backfill.
func DescribeNative(t reflect.Type) (*ToolSchema, error) {
	fs, err := Describe(t)
	if err != nil {
		return nil, err
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	d, err := Derive(t)
	if err != nil {
		return nil, err
	}

	return &ToolSchema{
		Name:        fs.Name,
		Description: fs.Description,
		InputSchema: d.Map(),
	}, nil
}

// backfillParamDocs copies doc-text parameter descriptions onto properties
// that do not already carry one. Structural descriptions always win.
func backfillParamDocs(parameters map[string]any, doc *Doc) {
	props, ok := parameters["properties"].(map[string]any)
	if !ok {
		return
	}
	for _, param := range doc.Params {
		if param.Description == "" {
			continue
		}
		ps, ok := props[param.Name].(map[string]any)
		if !ok {
			continue
		}
		if _, has := ps["description"]; !has {
			ps["description"] = param.Description
		}
	}
}

func describerDescription(t reflect.Type) string {
	if t.Implements(describerType) {
		return reflect.Zero(t).Interface().(Describer).SchemaDescription()
	}
	if reflect.PointerTo(t).Implements(describerType) {
		return reflect.New(t).Interface().(Describer).SchemaDescription()
	}
	return ""
}
