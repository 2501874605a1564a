package schema

import (
	"reflect"
	"strings"
	"sync"
)

// Doc is the parsed form of a type's registered doc text: a short
// description and per-parameter entries.
type Doc struct {
	Short  string
	Params []ParamDoc
}

// ParamDoc is one parameter entry from doc text.
type ParamDoc struct {
	Name        string
	Description string
}

var docRegistry sync.Map // reflect.Type -> *Doc

// RegisterDoc attaches free-form doc text to type T. The text's first
// non-empty line becomes the type's short description; lines of the form
// "name: description" under a "Parameters:" or "Args:" heading become
// per-parameter descriptions used to backfill fields that carry none.
//
//	schema.RegisterDoc[Person](`A person extracted from the conversation.
//
//	Parameters:
//	  name: The person's full name.
//	  age: Age in years.
//	`)
func RegisterDoc[T any](text string) {
	docRegistry.Store(reflect.TypeFor[T](), ParseDoc(text))
}

func docFor(t reflect.Type) *Doc {
	if doc, ok := docRegistry.Load(t); ok {
		return doc.(*Doc)
	}
	return nil
}

// ParseDoc parses free-form doc text into a [Doc].
func ParseDoc(text string) *Doc {
	doc := &Doc{}
	inParams := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(strings.TrimSuffix(line, ":"))
		if lower == "parameters" || lower == "args" || lower == "arguments" {
			inParams = true
			continue
		}

		if inParams {
			name, desc, ok := strings.Cut(line, ":")
			if !ok {
				// Continuation of the previous parameter's description.
				if n := len(doc.Params); n > 0 {
					doc.Params[n-1].Description += " " + line
				}
				continue
			}
			doc.Params = append(doc.Params, ParamDoc{
				Name:        strings.TrimSpace(name),
				Description: strings.TrimSpace(desc),
			})
			continue
		}

		if doc.Short == "" {
			doc.Short = line
		}
	}

	return doc
}
