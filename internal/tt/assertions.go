// Package tt contains shared test helpers.
package tt

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// RequireJSONEq asserts that two JSON documents are semantically equal,
// printing a unified diff of their normalized forms on failure.
func RequireJSONEq(t *testing.T, expected, actual string) {
	t.Helper()

	normExpected := normalize(t, expected)
	normActual := normalize(t, actual)
	if normExpected == normActual {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(normExpected),
		B:        difflib.SplitLines(normActual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	require.NoError(t, err)
	t.Fatalf("JSON documents differ:\n%s", diff)
}

func normalize(t *testing.T, doc string) string {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v), "invalid JSON: %s", doc)
	out, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return string(out)
}
