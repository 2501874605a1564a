package validate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Types registered in init below. Each test uses its own types so the
// global registry stays isolated between tests.

type leafGrand struct {
	Value string `json:"value"`
}

type leafChild struct {
	Grand leafGrand `json:"grand"`
}

type leafRoot struct {
	Child leafChild `json:"child"`
}

type plainPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

type ctxAware struct {
	Token string `json:"token"`
}

type orderItem struct {
	SKU string `json:"sku"`
}

type order struct {
	Items []orderItem `json:"items"`
}

type panicky struct {
	Name string `json:"name"`
}

type misconfigured struct {
	Real string `json:"real"`
}

type slowPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type Stamp struct {
	Signature string `json:"signature"`
}

type document struct {
	Stamp
	Title string `json:"title"`
}

func init() {
	Field[leafGrand]("value", func(_ context.Context, value any) error {
		return fmt.Errorf("value %q is always wrong", value)
	})

	Field[plainPair]("a", func(_ context.Context, _ any) error {
		return errors.New("a failed")
	})
	Field[plainPair]("b", func(_ context.Context, _ any) error {
		return nil
	})
	Model[plainPair](func(_ context.Context, p *plainPair) error {
		if p.A == p.B {
			return errors.New("a and b must differ")
		}
		return nil
	})

	FieldCtx[ctxAware]("token", func(_ context.Context, value any, vc Context) error {
		if vc == nil {
			return errors.New("context was not threaded")
		}
		if value.(string) != vc["expected"] {
			return errors.New("token mismatch")
		}
		return nil
	})

	Model[orderItem](func(_ context.Context, item *orderItem) error {
		if item.SKU == "" {
			return errors.New("sku must not be empty")
		}
		return nil
	})

	Field[panicky]("name", func(_ context.Context, _ any) error {
		panic("boom")
	})

	Field[misconfigured]("imaginary", func(_ context.Context, _ any) error {
		return nil
	})

	Field[slowPair]("left", func(ctx context.Context, _ any) error {
		select {
		case <-time.After(50 * time.Millisecond):
			return errors.New("left failed slowly")
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	Field[slowPair]("right", func(ctx context.Context, _ any) error {
		select {
		case <-time.After(50 * time.Millisecond):
			return errors.New("right failed slowly")
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	Field[Stamp]("signature", func(_ context.Context, value any) error {
		if value.(string) == "" {
			return errors.New("signature must not be empty")
		}
		return nil
	})
	Field[document]("signature", func(_ context.Context, value any) error {
		if value.(string) == "forged" {
			return errors.New("signature is forged")
		}
		return nil
	})
}

func TestRunNoValidators(t *testing.T) {
	type quiet struct {
		Name string `json:"name"`
	}

	failures, err := Run(context.Background(), &quiet{Name: "silent"}, nil)

	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestRunNestedFailurePath(t *testing.T) {
	root := &leafRoot{
		Child: leafChild{Grand: leafGrand{Value: "bad"}},
	}

	failures, err := Run(context.Background(), root, nil)

	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, []string{"child", "grand", "value"}, failures[0].Path)
	assert.Contains(t, failures[0].Message, `value "bad" is always wrong`)
	assert.Equal(t, `value "bad" is always wrong at child.grand.value`, failures[0].Error())
}

func TestRunAggregatesWithoutShortCircuit(t *testing.T) {
	pair := &plainPair{A: "same", B: "same"}

	failures, err := Run(context.Background(), pair, nil)
	require.NoError(t, err)

	messages := make([]string, 0, len(failures))
	for _, f := range failures {
		messages = append(messages, f.Error())
	}
	sort.Strings(messages)

	// The failing field validator and the failing model validator both
	// report; the passing field validator contributes nothing.
	assert.Equal(t, []string{"a and b must differ", "a failed at a"}, messages)
}

func TestRunModelValidatorPathIsPrefix(t *testing.T) {
	o := &order{Items: []orderItem{{SKU: ""}, {SKU: "present"}}}

	failures, err := Run(context.Background(), o, nil)

	require.NoError(t, err)
	require.Len(t, failures, 1)
	// Collection element indexes are not encoded; the path stops at the
	// attribute name.
	assert.Equal(t, []string{"items"}, failures[0].Path)
}

func TestRunPromotesEmbeddedFields(t *testing.T) {
	// Embedded fields validate under the flattened path the decoder
	// produces; no segment for the embed itself.
	failures, err := Run(context.Background(), &document{Title: "blank"}, nil)

	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, []string{"signature"}, failures[0].Path)
	assert.Contains(t, failures[0].Message, "must not be empty")

	// Outer-type validators may name promoted fields directly.
	failures, err = Run(context.Background(), &document{Stamp: Stamp{Signature: "forged"}}, nil)

	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, []string{"signature"}, failures[0].Path)
	assert.Contains(t, failures[0].Message, "forged")
}

func TestRunThreadsValidationContext(t *testing.T) {
	instance := &ctxAware{Token: "secret"}

	failures, err := Run(context.Background(), instance, Context{"expected": "secret"})
	require.NoError(t, err)
	assert.Empty(t, failures)

	failures, err = Run(context.Background(), instance, Context{"expected": "other"})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "token mismatch")
}

func TestRunRecoversPanics(t *testing.T) {
	failures, err := Run(context.Background(), &panicky{Name: "kaboom"}, nil)

	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, []string{"name"}, failures[0].Path)
	assert.Contains(t, failures[0].Message, "panicked")
	assert.Contains(t, failures[0].Message, "boom")
}

func TestRunUnknownFieldIsConfigurationError(t *testing.T) {
	failures, err := Run(context.Background(), &misconfigured{Real: "x"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "imaginary")
	assert.Nil(t, failures)
}

func TestRunJoinedWait(t *testing.T) {
	start := time.Now()

	failures, err := Run(context.Background(), &slowPair{}, nil)

	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Len(t, failures, 2)
	// Both validators sleep 50ms; a joined wait finishes near the
	// slowest validator, not the sum.
	assert.Less(t, elapsed, 90*time.Millisecond)
}

func TestRunIdempotent(t *testing.T) {
	root := &leafRoot{Child: leafChild{Grand: leafGrand{Value: "bad"}}}

	first, err := Run(context.Background(), root, nil)
	require.NoError(t, err)
	second, err := Run(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHas(t *testing.T) {
	type quiet struct {
		Name string `json:"name"`
	}
	type wrapper struct {
		Inner leafGrand `json:"inner"`
	}

	assert.False(t, Has(&quiet{}))
	assert.True(t, Has(&leafGrand{}))
	// Validators registered for nested types are reachable.
	assert.True(t, Has(&wrapper{}))
	assert.True(t, Has(&leafRoot{}))
}

func TestFailureError(t *testing.T) {
	assert.Equal(t, "it broke", Failure{Message: "it broke"}.Error())
	assert.Equal(t, "it broke at a.b", Failure{Path: []string{"a", "b"}, Message: "it broke"}.Error())
}
