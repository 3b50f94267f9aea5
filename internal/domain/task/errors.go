package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTaskNotFound indicates a full-detail fetch for an id the server does
// not know. It is distinct from other transport failures so callers can
// treat a vanished task differently from a broken connection.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError indicates malformed input to a filter check or paging
// option, such as a non-numeric run id or a non-positive page size.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError indicates that validated filter values are absent from the
// current valid-value set, or that a minimum match count was not met. It
// carries the dimension and the valid choices for user feedback.
type NotFoundError struct {
	Dimension string
	Missing   []string
	Valid     []string

	// Minimum is set when the error reports an unmet minimum match count
	// rather than specific missing values.
	Minimum int
	Matched int
}

func (e *NotFoundError) Error() string {
	if e.Minimum > 0 && len(e.Missing) == 0 {
		return fmt.Sprintf("%s: matched %d values, need at least %d (valid values: %s)",
			e.Dimension, e.Matched, e.Minimum, strings.Join(e.Valid, ", "))
	}
	return fmt.Sprintf("%s: no match for %s (valid values: %s)",
		e.Dimension, strings.Join(e.Missing, ", "), strings.Join(e.Valid, ", "))
}
