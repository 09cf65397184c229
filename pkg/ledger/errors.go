package ledger

import "errors"

var (
	// ErrInvalidAction is returned before any I/O when the decision action
	// is not exactly "approve" or "reject".
	ErrInvalidAction = errors.New("invalid action: must be \"approve\" or \"reject\"")

	// ErrInvalidTransition is returned when a decision targets a row that is
	// no longer pending. Approved and rejected are terminal.
	ErrInvalidTransition = errors.New("transaction is not pending")

	// ErrNotFound is returned when no row matches the transaction id.
	ErrNotFound = errors.New("transaction not found")
)
