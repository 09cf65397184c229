package directory

import "errors"

var (
	// ErrDuplicate is returned when the NIM, email, or username already
	// exists. The unique constraints are the authoritative guard; the error
	// is mapped from the constraint violation, not from a pre-check.
	ErrDuplicate = errors.New("member with this NIM, email, or username already exists")

	// ErrInvalidCredentials covers unknown username and wrong password alike
	// so login responses do not reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidStatus is returned when a status update targets a value
	// outside active/inactive/suspended.
	ErrInvalidStatus = errors.New("invalid status: must be active, inactive, or suspended")

	// ErrNotFound is returned when no member matches the id.
	ErrNotFound = errors.New("member not found")
)

// ValidationError describes a rejected registration input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
