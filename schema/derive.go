// Package schema derives JSON-Schema-like descriptions from Go types and
// compiles them for structural validation.
//
// # Quick Start
//
//	type Person struct {
//	    Name string `json:"name" description:"The person's full name"`
//	    Age  int    `json:"age" default:"0"`
//	}
//
//	fs, err := schema.Describe(reflect.TypeFor[Person]())
//	// fs.Name == "Person"
//	// fs.Parameters["required"] == []string{"name"} (sorted, no-default fields)
//
// Derivation is a pure structural recursion over the type: structs become
// objects, slices become arrays, registered interfaces become unions, and
// primitives map to their JSON Schema types. The input type is never
// mutated and the result is memoized.
package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Kind classifies a derived schema node.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindUnion   Kind = "union"
	KindEnum    Kind = "enum"
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindBinary  Kind = "binary"
)

// Definition is a derived schema node. Definitions returned by [Derive]
// are shared across calls and must be treated as immutable; [Definition.Map]
// renders a fresh map representation that callers may modify.
type Definition struct {
	Kind Kind

	// Properties holds the object's fields in declaration order.
	Properties []*Property

	// Additional describes map value types for object nodes derived from
	// Go maps.
	Additional *Definition

	// Items describes the element type of array nodes.
	Items *Definition

	// OneOf holds union alternatives in registration order. The order is
	// preserved because it determines downstream validation attempt order.
	OneOf []*Definition

	// Values holds the allowed values of enum nodes.
	Values []any

	// Format is an optional JSON Schema format hint (e.g. "date-time").
	Format string

	// Description is a type-level description hint (e.g. for durations).
	Description string

	// Nullable marks nodes derived from pointer types.
	Nullable bool

	// GoType is the Go type this node was derived from.
	GoType reflect.Type
}

// Property is one field of an object node.
type Property struct {
	Name        string
	Schema      *Definition
	Description string

	// HasDefault marks fields that do not participate in the required
	// set: fields with a `default` tag, pointer fields, and fields marked
	// omitempty.
	HasDefault bool
	Default    any
}

// Enumer lets a named type declare a closed set of allowed values.
type Enumer interface {
	EnumValues() []any
}

// UnsupportedTypeError reports a type shape [Derive] cannot express.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema: unsupported type %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema: unsupported type %s", e.Type)
}

var (
	enumerType = reflect.TypeFor[Enumer]()

	// unionRegistry maps interface types to their registered alternatives.
	unionRegistry sync.Map // reflect.Type -> []reflect.Type

	// deriveCache memoizes successful derivations. The mapping is pure,
	// so caching is an optimization, not a requirement.
	deriveCache sync.Map // reflect.Type -> *Definition
)

// RegisterUnion declares the alternatives of interface type I, in the
// order validation should attempt them. Derive fails on interface types
// with no registered alternatives.
//
// Panics if I is not an interface type or alternatives is empty; both are
// programmer errors at registration time.
func RegisterUnion[I any](alternatives ...any) {
	it := reflect.TypeFor[I]()
	if it.Kind() != reflect.Interface {
		panic(fmt.Sprintf("schema: RegisterUnion on non-interface type %s", it))
	}
	if len(alternatives) == 0 {
		panic(fmt.Sprintf("schema: RegisterUnion on %s with no alternatives", it))
	}

	alts := make([]reflect.Type, 0, len(alternatives))
	for _, alt := range alternatives {
		alts = append(alts, reflect.TypeOf(alt))
	}
	unionRegistry.Store(it, alts)
}

// Derive recursively rewrites t into a schema [Definition]. The input type
// graph is never mutated; for a fixed type the result is structurally
// identical on every call.
//
// Fails with [*UnsupportedTypeError] on type shapes that have no schema
// representation: funcs, channels, complex numbers, non-string-keyed maps,
// unregistered interfaces, and recursive types.
func Derive(t reflect.Type) (*Definition, error) {
	if cached, ok := deriveCache.Load(t); ok {
		return cached.(*Definition), nil
	}

	d, err := derive(t, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	deriveCache.Store(t, d)
	return d, nil
}

func derive(t reflect.Type, visiting map[reflect.Type]bool) (*Definition, error) {
	if t == nil {
		return nil, &UnsupportedTypeError{Reason: "nil type"}
	}

	if t.Kind() == reflect.Ptr {
		elem, err := derive(t.Elem(), visiting)
		if err != nil {
			return nil, err
		}
		// Copy so the shared element definition stays unmutated.
		nullable := *elem
		nullable.Nullable = true
		return &nullable, nil
	}

	if values, ok := enumValuesOf(t); ok {
		return &Definition{Kind: KindEnum, Values: values, GoType: t}, nil
	}

	switch t {
	case reflect.TypeFor[time.Time]():
		return &Definition{Kind: KindString, Format: "date-time", GoType: t}, nil
	case reflect.TypeFor[time.Duration]():
		return &Definition{
			Kind:        KindString,
			Description: "Duration string (e.g., '1h30m', '2s')",
			GoType:      t,
		}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return &Definition{Kind: KindString, GoType: t}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Definition{Kind: KindInteger, GoType: t}, nil

	case reflect.Float32, reflect.Float64:
		return &Definition{Kind: KindNumber, GoType: t}, nil

	case reflect.Bool:
		return &Definition{Kind: KindBoolean, GoType: t}, nil

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Definition{Kind: KindBinary, GoType: t}, nil
		}
		items, err := derive(t.Elem(), visiting)
		if err != nil {
			return nil, err
		}
		return &Definition{Kind: KindArray, Items: items, GoType: t}, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &UnsupportedTypeError{Type: t, Reason: "map keys must be strings"}
		}
		additional, err := derive(t.Elem(), visiting)
		if err != nil {
			return nil, err
		}
		return &Definition{Kind: KindObject, Additional: additional, GoType: t}, nil

	case reflect.Interface:
		alts, ok := unionRegistry.Load(t)
		if !ok {
			return nil, &UnsupportedTypeError{Type: t, Reason: "interface with no registered union alternatives"}
		}
		oneOf := make([]*Definition, 0, len(alts.([]reflect.Type)))
		for _, alt := range alts.([]reflect.Type) {
			d, err := derive(alt, visiting)
			if err != nil {
				return nil, err
			}
			oneOf = append(oneOf, d)
		}
		return &Definition{Kind: KindUnion, OneOf: oneOf, GoType: t}, nil

	case reflect.Struct:
		if visiting[t] {
			return nil, &UnsupportedTypeError{Type: t, Reason: "recursive type"}
		}
		visiting[t] = true
		defer delete(visiting, t)
		return deriveStruct(t, visiting)

	default:
		return nil, &UnsupportedTypeError{Type: t}
	}
}

func deriveStruct(t reflect.Type, visiting map[reflect.Type]bool) (*Definition, error) {
	properties := make([]*Property, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		omitempty := false
		tagged := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
				tagged = true
			}
			for _, part := range parts[1:] {
				if part == "omitempty" {
					omitempty = true
				}
			}
		}

		// encoding/json flattens an anonymous struct embed without a json
		// name, promoting its exported fields into the parent object. The
		// derived schema must match what the decoder accepts. Marker embeds
		// with no exported fields (e.g. extract.Meta) contribute nothing.
		if field.Anonymous && !tagged {
			et := field.Type
			if et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				if !hasExportedFields(et) {
					continue
				}
				inner, err := derive(et, visiting)
				if err != nil {
					return nil, err
				}
				properties = append(properties, inner.Properties...)
				continue
			}
		}

		var fieldSchema *Definition
		if enumTag := field.Tag.Get("enum"); enumTag != "" {
			values := make([]any, 0)
			for _, v := range strings.Split(enumTag, ",") {
				values = append(values, strings.TrimSpace(v))
			}
			fieldSchema = &Definition{Kind: KindEnum, Values: values, GoType: field.Type}
		} else {
			var err error
			fieldSchema, err = derive(field.Type, visiting)
			if err != nil {
				return nil, err
			}
		}

		prop := &Property{
			Name:        name,
			Schema:      fieldSchema,
			Description: field.Tag.Get("description"),
		}

		if defTag, ok := field.Tag.Lookup("default"); ok {
			prop.HasDefault = true
			prop.Default = parseDefault(defTag, field.Type)
		} else if omitempty || field.Type.Kind() == reflect.Ptr {
			prop.HasDefault = true
		}

		properties = append(properties, prop)
	}

	return &Definition{Kind: KindObject, Properties: properties, GoType: t}, nil
}

// enumValuesOf checks whether t (or *t) implements Enumer.
func enumValuesOf(t reflect.Type) ([]any, bool) {
	if t.Implements(enumerType) {
		return reflect.Zero(t).Interface().(Enumer).EnumValues(), true
	}
	if reflect.PointerTo(t).Implements(enumerType) {
		return reflect.New(t).Interface().(Enumer).EnumValues(), true
	}
	return nil, false
}

func hasExportedFields(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return true
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// parseDefault converts a `default` tag value to the field's natural type
// so it renders as a JSON number/boolean rather than a string.
func parseDefault(tag string, t reflect.Type) any {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseInt(tag, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(tag, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(tag); err == nil {
			return b
		}
	}
	return tag
}
