package validate

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// task is one scheduled validator invocation.
type task struct {
	path []string
	run  func(ctx context.Context) error
}

// Run concurrently executes every asynchronous validator reachable from
// instance and returns the aggregated failures. An empty slice (or nil)
// means the instance is valid.
//
// The instance graph is walked before anything runs: nested structs,
// pointers, and ordered/unordered collections of structs are visited, and
// every discovered validator becomes one task in a single flat batch with
// one joined wait. A registered field validator naming a field that does
// not exist on its type is a configuration error and aborts the call via
// the second return value before any task runs; it is not collected as a
// Failure.
//
// Validator errors and panics never abort the batch: each is converted to
// a [Failure] carrying the dotted path of the node it was scheduled for.
// Run holds no state across calls; given pure validators, calling it twice
// yields the same set of failures.
func Run(ctx context.Context, instance any, vc Context) ([]Failure, error) {
	var tasks []task
	if err := collect(reflect.ValueOf(instance), nil, vc, &tasks); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		failures []Failure
	)

	var g errgroup.Group
	for _, t := range tasks {
		g.Go(func() error {
			if f := execute(ctx, t); f != nil {
				mu.Lock()
				failures = append(failures, *f)
				mu.Unlock()
			}
			return nil
		})
	}
	// Tasks always return nil; failures travel as data.
	_ = g.Wait()

	return failures, nil
}

// Has reports whether any validator is reachable from instance, including
// validators registered for nested types. Callers can skip Run entirely
// when it returns false.
func Has(instance any) bool {
	found := false
	walk(reflect.ValueOf(instance), func(t reflect.Type) bool {
		fields, models := validatorsFor(t)
		if len(fields) > 0 || len(models) > 0 {
			found = true
			return false
		}
		return true
	})
	return found
}

// execute runs one validator, converting its error or recovered panic
// into a Failure.
func execute(ctx context.Context, t task) *Failure {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("validator panicked: %v", r)
			}
		}()
		return t.run(ctx)
	}()

	if err == nil {
		return nil
	}
	return &Failure{Path: t.path, Message: err.Error()}
}

// collect gathers validator tasks for v and everything nested inside it.
func collect(v reflect.Value, prefix []string, vc Context, tasks *[]task) error {
	v = deref(v)
	if !v.IsValid() || v.Kind() != reflect.Struct || v.Type() == reflect.TypeFor[time.Time]() {
		return nil
	}
	t := v.Type()

	fields, models := validatorsFor(t)

	if len(fields) > 0 {
		byName := fieldValues(v)
		for _, fv := range fields {
			value, ok := byName[fv.field]
			if !ok {
				return fmt.Errorf("validate: validator for %s references unknown field %q", t, fv.field)
			}
			path := extend(prefix, fv.field)
			run := fv.fn
			callCtx := vc
			if !fv.needsCtx {
				callCtx = nil
			}
			arg := value.Interface()
			*tasks = append(*tasks, task{
				path: path,
				run: func(ctx context.Context) error {
					return run(ctx, arg, callCtx)
				},
			})
		}
	}

	if len(models) > 0 {
		instance := addressable(v)
		for _, mv := range models {
			path := append([]string(nil), prefix...)
			run := mv.fn
			callCtx := vc
			if !mv.needsCtx {
				callCtx = nil
			}
			*tasks = append(*tasks, task{
				path: path,
				run: func(ctx context.Context) error {
					return run(ctx, instance, callCtx)
				},
			})
		}
	}

	// Recurse into nested structs and collections of structs. Collection
	// element indexes are not encoded in the path.
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		value := deref(v.Field(i))
		if !value.IsValid() {
			continue
		}

		// Anonymous embeds without a json name are flattened by the
		// decoder, so their validators keep the parent's path.
		if field.Anonymous && !jsonTagged(field) && value.Kind() == reflect.Struct {
			if err := collect(value, prefix, vc, tasks); err != nil {
				return err
			}
			continue
		}

		switch value.Kind() {
		case reflect.Struct:
			if err := collect(value, extend(prefix, name), vc, tasks); err != nil {
				return err
			}
		case reflect.Slice, reflect.Array:
			for j := 0; j < value.Len(); j++ {
				if err := collect(value.Index(j), extend(prefix, name), vc, tasks); err != nil {
					return err
				}
			}
		case reflect.Map:
			iter := value.MapRange()
			for iter.Next() {
				if err := collect(iter.Value(), extend(prefix, name), vc, tasks); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// walk visits the type of every struct node reachable from v. visit
// returns false to stop early.
func walk(v reflect.Value, visit func(t reflect.Type) bool) bool {
	v = deref(v)
	if !v.IsValid() || v.Kind() != reflect.Struct || v.Type() == reflect.TypeFor[time.Time]() {
		return true
	}
	t := v.Type()
	if !visit(t) {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		value := deref(v.Field(i))
		if !value.IsValid() {
			continue
		}
		switch value.Kind() {
		case reflect.Struct:
			if !walk(value, visit) {
				return false
			}
		case reflect.Slice, reflect.Array:
			for j := 0; j < value.Len(); j++ {
				if !walk(value.Index(j), visit) {
					return false
				}
			}
		case reflect.Map:
			iter := value.MapRange()
			for iter.Next() {
				if !walk(iter.Value(), visit) {
					return false
				}
			}
		}
	}
	return true
}

// fieldValues maps JSON field names to their current values, including
// fields promoted from anonymous embeds the way encoding/json flattens
// them.
func fieldValues(v reflect.Value) map[string]reflect.Value {
	byName := make(map[string]reflect.Value, v.NumField())
	addFieldValues(v, byName)
	return byName
}

func addFieldValues(v reflect.Value, byName map[string]reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && !jsonTagged(field) {
			ev := deref(v.Field(i))
			if ev.IsValid() && ev.Kind() == reflect.Struct {
				addFieldValues(ev, byName)
				continue
			}
		}
		byName[jsonFieldName(field)] = v.Field(i)
	}
}

// jsonTagged reports whether the field's json tag assigns it a name,
// which suppresses embedded-field flattening.
func jsonTagged(field reflect.StructField) bool {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	return name != "" && name != "-"
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}

// addressable returns a pointer to v's value, copying when v is not
// addressable (e.g. a map element). The graph is read-only during
// orchestration, so the copy is safe.
func addressable(v reflect.Value) any {
	if v.CanAddr() {
		return v.Addr().Interface()
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Interface()
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func extend(prefix []string, name string) []string {
	return append(append([]string(nil), prefix...), name)
}
