package schema

import "sort"

// Map renders the definition as a JSON-Schema-like map. Each call builds
// fresh maps, so callers may annotate the result without affecting the
// shared definition tree.
func (d *Definition) Map() map[string]any {
	m := map[string]any{}

	switch d.Kind {
	case KindObject:
		m["type"] = "object"
		if d.Additional != nil {
			m["additionalProperties"] = d.Additional.Map()
			break
		}
		props := make(map[string]any, len(d.Properties))
		for _, p := range d.Properties {
			ps := p.Schema.Map()
			if p.Description != "" {
				ps["description"] = p.Description
			}
			if p.HasDefault && p.Default != nil {
				ps["default"] = p.Default
			}
			props[p.Name] = ps
		}
		m["properties"] = props
		if required := d.Required(); len(required) > 0 {
			m["required"] = required
		}

	case KindArray:
		m["type"] = "array"
		m["items"] = d.Items.Map()

	case KindUnion:
		anyOf := make([]any, 0, len(d.OneOf))
		for _, alt := range d.OneOf {
			anyOf = append(anyOf, alt.Map())
		}
		m["anyOf"] = anyOf

	case KindEnum:
		m["enum"] = append([]any(nil), d.Values...)
		if typ, ok := enumType(d.Values); ok {
			m["type"] = typ
		}

	case KindBinary:
		m["type"] = "string"
		m["contentEncoding"] = "base64"

	case KindString:
		m["type"] = "string"

	case KindInteger:
		m["type"] = "integer"

	case KindNumber:
		m["type"] = "number"

	case KindBoolean:
		m["type"] = "boolean"
	}

	if d.Format != "" {
		m["format"] = d.Format
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Nullable {
		if typeVal, ok := m["type"].(string); ok {
			m["type"] = []string{typeVal, "null"}
		}
	}

	return m
}

// Required returns the sorted set of property names lacking a default
// value. Only meaningful for object nodes.
func (d *Definition) Required() []string {
	required := make([]string, 0, len(d.Properties))
	for _, p := range d.Properties {
		if !p.HasDefault {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)
	return required
}

// enumType returns the JSON type shared by every enum value. Mixed or
// unrepresentable value types render without a type constraint; the enum
// clause still restricts the allowed values.
func enumType(values []any) (string, bool) {
	shared := ""
	for _, v := range values {
		var t string
		switch v.(type) {
		case string:
			t = "string"
		case bool:
			t = "boolean"
		case float32, float64:
			t = "number"
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64:
			t = "integer"
		default:
			return "", false
		}
		if shared == "" {
			shared = t
		} else if shared != t {
			return "", false
		}
	}
	return shared, shared != ""
}
