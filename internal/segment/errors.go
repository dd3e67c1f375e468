// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"fmt"

	"github.com/pdiddy/quizdeck/pkg/types"
)

// FieldMismatchError reports a question block whose body does not fit the
// kind-specific field layout. The block is dropped and parsing continues.
type FieldMismatchError struct {
	Category string
	Kind     types.Kind
	Number   int
	Block    string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("question %d in %s/%s: fields do not match layout", e.Number, categoryOrUnset(e.Category), e.Kind)
}

// ContextMismatchError reports a run banner whose category label is not in
// the configured vocabulary, or whose lead-in could not be read at all.
// The run continues with the category unset.
type ContextMismatchError struct {
	Label string
	Kind  types.Kind
}

func (e *ContextMismatchError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("run banner lead-in unreadable, assuming %s", e.Kind)
	}
	return fmt.Sprintf("category %q not in vocabulary (%s run)", e.Label, e.Kind)
}

// StructuralError means a run contained no recognizable question boundary
// after the whole document was read. The input does not follow the
// expected layout; parsing aborts.
type StructuralError struct {
	Run      int
	Category string
	Kind     types.Kind
	Reason   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("layout mismatch in run %d (%s/%s): %s", e.Run, categoryOrUnset(e.Category), e.Kind, e.Reason)
}

func categoryOrUnset(c string) string {
	if c == "" {
		return "<unset>"
	}
	return c
}
