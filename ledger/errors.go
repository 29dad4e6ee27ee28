/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All business error types in one place. The API layer maps these onto
  HTTP status codes; everything it cannot recognize becomes a 500.

ERROR CATEGORIES:
  1. Validation errors - malformed input, rejected before any write
  2. Not-found errors - referenced client/variant/movement is missing
  3. Consistency errors - returning more kegs than the client holds

USAGE:
  if errors.Is(err, ledger.ErrExcessReturn) { ... }

  var verr *ledger.ValidationError
  if errors.As(err, &verr) { ... verr.Field ... }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the root of all missing-reference failures.
	ErrNotFound = errors.New("not found")

	// ErrExcessReturn is returned when a client tries to return more
	// kegs of a variant than the ledger says they hold. The whole
	// submission is rejected; nothing is written.
	ErrExcessReturn = errors.New("return exceeds kegs held")

	// ErrDuplicateName is returned when a client or product name is
	// already taken.
	ErrDuplicateName = errors.New("name already in use")

	// ErrClientArchived is returned when recording against an archived
	// client. History stays readable; new movements are refused.
	ErrClientArchived = errors.New("client is archived")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "client", "variant", "movement"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ExcessReturnError details a rejected over-return.
type ExcessReturnError struct {
	ClientID  ClientID
	VariantID catalog.VariantID
	Held      int
	Returned  int
}

func (e *ExcessReturnError) Error() string {
	return fmt.Sprintf("client %s holds %d kegs of variant %s, cannot return %d",
		e.ClientID, e.Held, e.VariantID, e.Returned)
}

func (e *ExcessReturnError) Unwrap() error { return ErrExcessReturn }

// DraftError ties a failure to the draft line that caused it, so a
// multi-line submission can point the operator at the offending row.
type DraftError struct {
	Line int // zero-based index into the draft's lines
	Err  error
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line+1, e.Err)
}

func (e *DraftError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrExcessReturn) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrClientArchived)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
