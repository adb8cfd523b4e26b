// internal/loans/domain.go
package loans

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a loan. The set is closed: anything
// else read from the wire or the database is rejected.
type Status string

const (
	StatusActive   Status = "active"
	StatusRenewed  Status = "renewed"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
	StatusLost     Status = "lost"
)

// Valid reports whether s is one of the five known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusRenewed, StatusOverdue, StatusReturned, StatusLost:
		return true
	}
	return false
}

// Terminal reports whether no further circulation events apply.
// A lost loan is terminal for circulation purposes but may still be
// administratively restored to active.
func (s Status) Terminal() bool {
	return s == StatusReturned || s == StatusLost
}

// renewable reports whether a renew event is accepted in this state.
func (s Status) renewable() bool {
	return s == StatusActive || s == StatusRenewed
}

// returnable reports whether a return or mark-lost event is accepted
// in this state.
func (s Status) returnable() bool {
	return s == StatusActive || s == StatusRenewed || s == StatusOverdue
}

// Loan represents one circulation transaction: a book checked out by a
// user from an origin campus.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	UserID     uuid.UUID  `json:"user_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     Status     `json:"status"`
	Renewals   int        `json:"renewals"`
	Origin     string     `json:"origin"`
	FineAmount int64      `json:"fine_amount"`
	DaysLate   int        `json:"days_late"`
	Notes      string     `json:"notes,omitempty"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RenewalCap returns the maximum renewal count for a book
// classification: two for literature, one for everything else. The
// match is a case-insensitive substring test because the backend
// stores free-form classification labels ("Literatura clásica",
// "literatura infantil", ...).
func RenewalCap(classification string) int {
	if strings.Contains(strings.ToLower(classification), "literatura") {
		return 2
	}
	return 1
}

// LoanCreatedChange is journaled when a loan is issued.
type LoanCreatedChange struct {
	ID       uuid.UUID `json:"id"`
	BookID   uuid.UUID `json:"book_id"`
	UserID   uuid.UUID `json:"user_id"`
	DueDate  time.Time `json:"due_date"`
	Origin   string    `json:"origin"`
}

// LoanRenewedChange is journaled when a loan's due date is extended.
type LoanRenewedChange struct {
	ID       uuid.UUID `json:"id"`
	DueDate  time.Time `json:"due_date"`
	Renewals int       `json:"renewals"`
}

// LoanReturnedChange is journaled when a book comes back.
type LoanReturnedChange struct {
	ID         uuid.UUID `json:"id"`
	ReturnedAt time.Time `json:"returned_at"`
	FineAmount int64     `json:"fine_amount"`
	DaysLate   int       `json:"days_late"`
}

// LoanStatusChange is journaled for mark-lost, restore, and the
// overdue sweep.
type LoanStatusChange struct {
	ID         uuid.UUID `json:"id"`
	NewStatus  Status    `json:"new_status"`
	FineAmount int64     `json:"fine_amount,omitempty"`
	DaysLate   int       `json:"days_late,omitempty"`
}
