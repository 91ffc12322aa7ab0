// internal/domain/checkout/errors.go
package checkout

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level validation failures. Fully
// recoverable: the user edits the offending fields and resubmits. No side
// effects have happened when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// newValidationError builds a ValidationError with a single field failure
func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// PersistenceError marks the most severe failure class: a settlement
// commitment may already exist at the backend while the local order record
// is missing or incomplete. Always logged with full context upstream.
type PersistenceError struct {
	OrderNumber int64
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to record order %d: %v", e.OrderNumber, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
