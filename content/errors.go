package content

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the repository's failure taxonomy. Validation failures
// carry their own type so callers can surface every message at once.
var (
	// ErrAuthRequired is returned when a mutating call finds no active session.
	ErrAuthRequired = errors.New("Authentication required. Please log in again.")

	// ErrForbidden is returned when the store rejects a call with code 403.
	ErrForbidden = errors.New("You do not have permission to perform this action. Please check your access rights.")

	// ErrMissingID is returned by Update when the record has no identity yet.
	ErrMissingID = errors.New("record has no id; create it first")
)

// ValidationError collects every invariant violated by a record. It is
// produced entirely client-side; a record that fails validation never reaches
// the store.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// StoreError is a store-level rejection carrying the store's error code.
type StoreError struct {
	Code    string
	Message string
}

func (e *StoreError) Error() string {
	if e.Message == "" {
		return "store error " + e.Code
	}
	return e.Message
}

// CodeNotFound is the store code for a missing row.
const CodeNotFound = "404"

// CodeForbidden is the store code for a row-level permission rejection.
const CodeForbidden = "403"

// persistErr wraps a store failure, translating a 403 into ErrForbidden so
// the UI can show the permission message instead of the generic one.
func persistErr(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) && se.Code == CodeForbidden {
		return ErrForbidden
	}
	return fmt.Errorf("%s: %w", op, err)
}
