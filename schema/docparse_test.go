package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDoc(t *testing.T) {
	type input struct {
		text string
	}

	type expected struct {
		short  string
		params []ParamDoc
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "empty text",
			input:    input{text: ""},
			expected: expected{},
		},
		{
			name:     "short description only",
			input:    input{text: "A person extracted from text.\n\nMore prose that is ignored."},
			expected: expected{short: "A person extracted from text."},
		},
		{
			name: "parameters section",
			input: input{text: `A person extracted from text.

Parameters:
  name: The person's full name.
  age: Age in years.
`},
			expected: expected{
				short: "A person extracted from text.",
				params: []ParamDoc{
					{Name: "name", Description: "The person's full name."},
					{Name: "age", Description: "Age in years."},
				},
			},
		},
		{
			name: "args heading and continuation lines",
			input: input{text: `Extracted booking.

Args:
  booking_id: Two letters
    followed by four digits.
`},
			expected: expected{
				short: "Extracted booking.",
				params: []ParamDoc{
					{Name: "booking_id", Description: "Two letters followed by four digits."},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseDoc(tt.input.text)

			require.NotNil(t, doc)
			assert.Equal(t, tt.expected.short, doc.Short)
			assert.Equal(t, tt.expected.params, doc.Params)
		})
	}
}
