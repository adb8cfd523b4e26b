// internal/loans/errors.go
package loans

import (
	"errors"
	"fmt"
)

var (
	// ErrLoanNotFound means no loan matches the id.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrRenewalCapReached means the loan has used every permitted
	// renewal for its book classification.
	ErrRenewalCapReached = errors.New("renewal cap reached")
	// ErrInvalidTransition means the requested event is not accepted
	// in the loan's current state (e.g. renewing a returned loan).
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidDueDate means a create or renew carried a due date
	// that does not extend the loan.
	ErrInvalidDueDate = errors.New("due date must extend the loan")
)

// PartialFailure reports that a loan state change was recorded but the
// matching inventory adjustment failed. The loan is authoritative; the
// stock count needs manual reconciliation. There is no cross-resource
// transaction in the backend, so this is surfaced instead of rolled
// back.
type PartialFailure struct {
	Loan *Loan
	Err  error
}

func (p *PartialFailure) Error() string {
	return fmt.Sprintf("loan %s recorded, inventory adjustment failed: %v", p.Loan.ID, p.Err)
}

func (p *PartialFailure) Unwrap() error {
	return p.Err
}
