package validate

import (
	"context"
	"reflect"
	"sync"
)

// fieldValidator is a validator scoped to one field of a type. fn receives
// the field's current value; vc is nil unless needsCtx is set.
type fieldValidator struct {
	field    string
	fn       func(ctx context.Context, value any, vc Context) error
	needsCtx bool
}

// modelValidator is a validator scoped to a whole value. fn receives a
// pointer to the instance.
type modelValidator struct {
	fn       func(ctx context.Context, instance any, vc Context) error
	needsCtx bool
}

// registry holds the per-type validator lists, populated by explicit
// registration rather than runtime introspection.
var registry struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]fieldValidator
	models map[reflect.Type][]modelValidator
}

func init() {
	registry.fields = make(map[reflect.Type][]fieldValidator)
	registry.models = make(map[reflect.Type][]modelValidator)
}

// Field registers an asynchronous validator for one field of T. The field
// name is the JSON name (json tag, falling back to the Go field name).
// Registering a name that does not exist on T is a programmer error,
// surfaced as a configuration error by [Run].
func Field[T any](field string, fn func(ctx context.Context, value any) error) {
	register[T](fieldValidator{
		field: field,
		fn: func(ctx context.Context, value any, _ Context) error {
			return fn(ctx, value)
		},
	})
}

// FieldCtx is like [Field] for validators that need the validation context.
func FieldCtx[T any](field string, fn func(ctx context.Context, value any, vc Context) error) {
	register[T](fieldValidator{field: field, fn: fn, needsCtx: true})
}

// Model registers an asynchronous validator over whole values of T.
func Model[T any](fn func(ctx context.Context, instance *T) error) {
	registerModel[T](modelValidator{
		fn: func(ctx context.Context, instance any, _ Context) error {
			return fn(ctx, instance.(*T))
		},
	})
}

// ModelCtx is like [Model] for validators that need the validation context.
func ModelCtx[T any](fn func(ctx context.Context, instance *T, vc Context) error) {
	registerModel[T](modelValidator{
		fn: func(ctx context.Context, instance any, vc Context) error {
			return fn(ctx, instance.(*T), vc)
		},
		needsCtx: true,
	})
}

func register[T any](v fieldValidator) {
	t := reflect.TypeFor[T]()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.fields[t] = append(registry.fields[t], v)
}

func registerModel[T any](v modelValidator) {
	t := reflect.TypeFor[T]()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.models[t] = append(registry.models[t], v)
}

func validatorsFor(t reflect.Type) ([]fieldValidator, []modelValidator) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.fields[t], registry.models[t]
}
