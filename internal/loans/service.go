// internal/loans/service.go
package loans

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/migueldrlds/bibliteK-sub000/internal/catalog"
	"github.com/migueldrlds/bibliteK-sub000/internal/fines"
	"github.com/migueldrlds/bibliteK-sub000/internal/users"
)

// CreateLoanInput carries everything needed to issue a loan.
type CreateLoanInput struct {
	BookID   uuid.UUID
	UserID   uuid.UUID
	LoanDate time.Time
	DueDate  time.Time
	Origin   string
	Notes    string
}

// Service defines the interface for the loans service.
type Service interface {
	CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error)
	RenewLoan(ctx context.Context, id uuid.UUID, newDueDate time.Time) (*Loan, error)
	ReturnLoan(ctx context.Context, id uuid.UUID) (*Loan, error)
	MarkLost(ctx context.Context, id uuid.UUID) (*Loan, error)
	RestoreFromLost(ctx context.Context, id uuid.UUID) (*Loan, error)
	SweepOverdue(ctx context.Context) (int, error)
	EstimateFine(ctx context.Context, id uuid.UUID) (fines.Fine, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error)
	ListLoans(ctx context.Context, status *Status) ([]*Loan, error)
}

// BookDirectory is the catalog collaborator: title lookup and
// per-campus inventory adjustment.
type BookDirectory interface {
	GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error)
	AdjustInventory(ctx context.Context, bookID uuid.UUID, location string, delta int) (*catalog.InventoryRecord, error)
}

// UserDirectory is the users collaborator.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// HolidaySource supplies the flagged holiday dates used to shrink
// overdue business-day counts.
type HolidaySource interface {
	GetHolidays(ctx context.Context) ([]time.Time, error)
}

// ChangeJournal records loan state changes with an optimistic version
// check.
type ChangeJournal interface {
	Append(ctx context.Context, recordID uuid.UUID, recordType, change string, payload any, expectedVersion int) error
}
