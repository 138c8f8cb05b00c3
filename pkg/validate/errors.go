package validate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRule is returned for rule names outside the registry.
	ErrUnknownRule = errors.New("unknown validation rule")

	// ErrInvalidRule is returned when a rule payload cannot be used.
	ErrInvalidRule = errors.New("invalid validation rule")

	// ErrSchemaSource is returned when the schema (view) source cannot be read.
	ErrSchemaSource = errors.New("schema source unavailable")
)

// MissingColumnError reports hash columns absent from the input table.
type MissingColumnError struct {
	Columns   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("columns [%s] not in input columns [%s]",
		strings.Join(e.Columns, ", "), strings.Join(e.Available, ", "))
}

func invalidRule(k Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRule, k, fmt.Sprintf(format, args...))
}
