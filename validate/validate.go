// Package validate runs asynchronous post-parse validators over an object
// graph and aggregates their failures.
//
// Validators are registered per type at init time, scoped either to a
// single field or to the whole value:
//
//	func init() {
//	    validate.Field[Person]("name", func(ctx context.Context, value any) error {
//	        if value.(string) == "" {
//	            return errors.New("name must not be empty")
//	        }
//	        return nil
//	    })
//	    validate.ModelCtx[Person](func(ctx context.Context, p *Person, vc validate.Context) error {
//	        return checkAgainstDirectory(ctx, p, vc["directory"])
//	    })
//	}
//
// [Run] walks the instance graph (nested structs and collections of
// structs included), schedules one task per discovered validator, and
// waits for all of them in a single joined wait, so total latency tracks
// the slowest validator rather than the sum. Validator errors and panics
// are converted to [Failure] values carrying the dotted path to the
// offending node; they never abort the batch.
package validate

import (
	"fmt"
	"strings"
)

// Context is the caller-supplied auxiliary data mapping threaded into
// validators that declare they need it.
type Context map[string]any

// Failure is one validator's failure: a human-readable message and the
// path of field names leading to the offending node. Collection element
// indexes are not encoded; the path stops at the attribute name.
type Failure struct {
	Path    []string
	Message string
}

func (f Failure) Error() string {
	if len(f.Path) == 0 {
		return f.Message
	}
	return fmt.Sprintf("%s at %s", f.Message, strings.Join(f.Path, "."))
}
