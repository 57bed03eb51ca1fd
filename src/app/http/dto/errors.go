package dto

import (
	"fmt"

	"workshop/src/core/domain"
)

// Validation failure reasons.
const (
	ReasonRequired     = "required"
	ReasonTypeMismatch = "type mismatch"
)

// ValidationError reports a malformed or missing input field. It is a
// client fault and maps to domain.ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap exposes the error as a domain validation error.
func (e *ValidationError) Unwrap() error {
	return domain.NewValidationError(e.Field, e.Reason)
}

// ProjectionError reports a domain record handed to a projection without a
// relation it requires. It maps to domain.ErrIntegrity.
type ProjectionError struct {
	Record   string
	RecordID int64
	Relation string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("%s %d: relation %q not populated", e.Record, e.RecordID, e.Relation)
}

// Unwrap exposes the error as a domain integrity error.
func (e *ProjectionError) Unwrap() error {
	return domain.NewIntegrityError(fmt.Sprintf("%s.%s not populated", e.Record, e.Relation))
}
