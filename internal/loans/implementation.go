// internal/loans/implementation.go
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/migueldrlds/bibliteK-sub000/internal/calendar"
	"github.com/migueldrlds/bibliteK-sub000/internal/fines"
)

// service implements the Service interface. It owns the loan state
// machine and keeps inventory reconciled with loan state through the
// catalog collaborator.
type service struct {
	repo     Repository
	books    BookDirectory
	users    UserDirectory
	holidays HolidaySource
	journal  ChangeJournal
	calc     *fines.Calculator
	logger   *zap.Logger

	tracer trace.Tracer
	issued metric.Int64Counter
	swept  metric.Int64Counter
	fined  metric.Int64Counter

	now func() time.Time
}

// NewService creates a new loans service instance.
func NewService(repo Repository, books BookDirectory, users UserDirectory, holidays HolidaySource, journal ChangeJournal, logger *zap.Logger) Service {
	meter := otel.Meter("bibliotek/loans")
	issued, _ := meter.Int64Counter("loans_issued_total")
	swept, _ := meter.Int64Counter("loans_swept_overdue_total")
	fined, _ := meter.Int64Counter("fines_assessed_total")

	return &service{
		repo:     repo,
		books:    books,
		users:    users,
		holidays: holidays,
		journal:  journal,
		calc:     fines.NewCalculator(nil),
		logger:   logger,
		tracer:   otel.Tracer("bibliotek/loans"),
		issued:   issued,
		swept:    swept,
		fined:    fined,
		now:      time.Now,
	}
}

// CreateLoan issues a loan: validates the borrower and the title,
// records the loan as active, then decrements inventory at the origin
// campus. An inventory failure does not undo the loan; it is surfaced
// as a PartialFailure alongside the recorded loan.
func (s *service) CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loans.create",
		trace.WithAttributes(
			attribute.String("book.id", in.BookID.String()),
			attribute.String("user.id", in.UserID.String()),
		),
	)
	defer span.End()

	if _, err := s.users.GetUser(ctx, in.UserID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if _, err := s.books.GetBook(ctx, in.BookID); err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	loanDate := in.LoanDate
	if loanDate.IsZero() {
		loanDate = s.now()
	}
	if !in.DueDate.After(loanDate) {
		return nil, ErrInvalidDueDate
	}

	loan := &Loan{
		ID:       uuid.New(),
		BookID:   in.BookID,
		UserID:   in.UserID,
		LoanDate: loanDate,
		DueDate:  in.DueDate,
		Status:   StatusActive,
		Origin:   in.Origin,
		Notes:    in.Notes,
		Version:  1,
	}

	change := LoanCreatedChange{
		ID:      loan.ID,
		BookID:  loan.BookID,
		UserID:  loan.UserID,
		DueDate: loan.DueDate,
		Origin:  loan.Origin,
	}
	if err := s.journal.Append(ctx, loan.ID, "loan", "LoanCreated", change, 0); err != nil {
		return nil, fmt.Errorf("journal loan: %w", err)
	}
	if err := s.repo.Insert(ctx, loan); err != nil {
		return nil, err
	}

	s.issued.Add(ctx, 1)

	if _, err := s.books.AdjustInventory(ctx, loan.BookID, loan.Origin, -1); err != nil {
		s.logger.Warn("loan recorded but inventory not decremented",
			zap.String("loan_id", loan.ID.String()),
			zap.String("book_id", loan.BookID.String()),
			zap.String("origin", loan.Origin),
			zap.Error(err),
		)
		return loan, &PartialFailure{Loan: loan, Err: err}
	}

	return loan, nil
}

// RenewLoan extends the due date of an active or renewed loan,
// bounded by the book classification's renewal cap.
func (s *service) RenewLoan(ctx context.Context, id uuid.UUID, newDueDate time.Time) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loans.renew",
		trace.WithAttributes(attribute.String("loan.id", id.String())),
	)
	defer span.End()

	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !loan.Status.renewable() {
		return nil, fmt.Errorf("renew in state %q: %w", loan.Status, ErrInvalidTransition)
	}

	book, err := s.books.GetBook(ctx, loan.BookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if cap := RenewalCap(book.Classification); loan.Renewals >= cap {
		return nil, fmt.Errorf("%d of %d renewals used: %w", loan.Renewals, cap, ErrRenewalCapReached)
	}
	if !newDueDate.After(loan.DueDate) {
		return nil, ErrInvalidDueDate
	}

	loan.DueDate = newDueDate
	loan.Renewals++
	loan.Status = StatusRenewed

	change := LoanRenewedChange{ID: loan.ID, DueDate: loan.DueDate, Renewals: loan.Renewals}
	if err := s.journal.Append(ctx, loan.ID, "loan", "LoanRenewed", change, loan.Version); err != nil {
		return nil, fmt.Errorf("journal renewal: %w", err)
	}
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan closes out a loan: sets the actual return date, assesses
// the final fine when the book came back late, and restores inventory
// at the origin campus (same partial-failure policy as CreateLoan).
func (s *service) ReturnLoan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loans.return",
		trace.WithAttributes(attribute.String("loan.id", id.String())),
	)
	defer span.End()

	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !loan.Status.returnable() {
		return nil, fmt.Errorf("return in state %q: %w", loan.Status, ErrInvalidTransition)
	}

	returnedAt := s.now()
	fine := s.assess(ctx, loan.DueDate, returnedAt)

	loan.Status = StatusReturned
	loan.ReturnedAt = &returnedAt
	loan.FineAmount = fine.Amount
	loan.DaysLate = fine.DaysLate

	change := LoanReturnedChange{
		ID:         loan.ID,
		ReturnedAt: returnedAt,
		FineAmount: fine.Amount,
		DaysLate:   fine.DaysLate,
	}
	if err := s.journal.Append(ctx, loan.ID, "loan", "LoanReturned", change, loan.Version); err != nil {
		return nil, fmt.Errorf("journal return: %w", err)
	}
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}

	if fine.Amount > 0 {
		s.fined.Add(ctx, 1, metric.WithAttributes(attribute.Int("days_late", fine.DaysLate)))
	}

	if _, err := s.books.AdjustInventory(ctx, loan.BookID, loan.Origin, +1); err != nil {
		s.logger.Warn("return recorded but inventory not incremented",
			zap.String("loan_id", loan.ID.String()),
			zap.String("book_id", loan.BookID.String()),
			zap.String("origin", loan.Origin),
			zap.Error(err),
		)
		return loan, &PartialFailure{Loan: loan, Err: err}
	}
	return loan, nil
}

// MarkLost records a real stock loss: the loan is terminal and the
// missing copy is not added back to inventory.
func (s *service) MarkLost(ctx context.Context, id uuid.UUID) (*Loan, error) {
	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !loan.Status.returnable() {
		return nil, fmt.Errorf("mark lost in state %q: %w", loan.Status, ErrInvalidTransition)
	}

	loan.Status = StatusLost

	change := LoanStatusChange{ID: loan.ID, NewStatus: StatusLost}
	if err := s.journal.Append(ctx, loan.ID, "loan", "LoanMarkedLost", change, loan.Version); err != nil {
		return nil, fmt.Errorf("journal loss: %w", err)
	}
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// RestoreFromLost administratively reverts a lost loan to active.
// Inventory is untouched, mirroring MarkLost: the copy left stock when
// it was declared lost and does not come back by bookkeeping alone.
func (s *service) RestoreFromLost(ctx context.Context, id uuid.UUID) (*Loan, error) {
	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != StatusLost {
		return nil, fmt.Errorf("restore in state %q: %w", loan.Status, ErrInvalidTransition)
	}

	loan.Status = StatusActive
	loan.ReturnedAt = nil

	change := LoanStatusChange{ID: loan.ID, NewStatus: StatusActive}
	if err := s.journal.Append(ctx, loan.ID, "loan", "LoanRestored", change, loan.Version); err != nil {
		return nil, fmt.Errorf("journal restore: %w", err)
	}
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// SweepOverdue transitions every active or renewed loan whose due date
// has passed to overdue, persisting a running fine estimate. Running it
// again with no newly expired loans updates nothing: expired loans are
// selected by state, and the first pass moved them out of the selected
// states.
func (s *service) SweepOverdue(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "loans.sweep")
	defer span.End()

	asOf := s.now()
	expired, err := s.repo.ListExpired(ctx, asOf)
	if err != nil {
		return 0, err
	}

	updated := 0
	var errs []error
	for _, loan := range expired {
		fine := s.assess(ctx, loan.DueDate, asOf)

		loan.Status = StatusOverdue
		loan.FineAmount = fine.Amount
		loan.DaysLate = fine.DaysLate

		change := LoanStatusChange{
			ID:         loan.ID,
			NewStatus:  StatusOverdue,
			FineAmount: fine.Amount,
			DaysLate:   fine.DaysLate,
		}
		if err := s.journal.Append(ctx, loan.ID, "loan", "LoanOverdue", change, loan.Version); err != nil {
			errs = append(errs, fmt.Errorf("loan %s: %w", loan.ID, err))
			continue
		}
		if err := s.repo.Update(ctx, loan); err != nil {
			errs = append(errs, fmt.Errorf("loan %s: %w", loan.ID, err))
			continue
		}
		updated++
	}

	span.SetAttributes(attribute.Int("loans.updated", updated))
	s.swept.Add(ctx, int64(updated))
	if updated > 0 {
		s.logger.Info("overdue sweep finished",
			zap.Int("scanned", len(expired)),
			zap.Int("updated", updated),
		)
	}
	return updated, errors.Join(errs...)
}

// EstimateFine computes the fine a loan would carry right now, without
// mutating anything. For a returned loan the reference is the actual
// return date, so the estimate matches the persisted final fine.
func (s *service) EstimateFine(ctx context.Context, id uuid.UUID) (fines.Fine, error) {
	loan, err := s.repo.Get(ctx, id)
	if err != nil {
		return fines.Fine{}, err
	}

	reference := s.now()
	if loan.ReturnedAt != nil {
		reference = *loan.ReturnedAt
	}
	return s.assess(ctx, loan.DueDate, reference), nil
}

// GetLoan retrieves a loan by id.
func (s *service) GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.repo.Get(ctx, id)
}

// ListLoans lists loans, optionally filtered by state.
func (s *service) ListLoans(ctx context.Context, status *Status) ([]*Loan, error) {
	return s.repo.List(ctx, status)
}

// assess fetches the holiday set and runs the fine calculation. A
// holiday fetch failure degrades to no holiday adjustment rather than
// blocking the fine.
func (s *service) assess(ctx context.Context, due, reference time.Time) fines.Fine {
	holidayCount := 0
	dates, err := s.holidays.GetHolidays(ctx)
	if err != nil {
		s.logger.Warn("holiday set unavailable, fine computed without holiday adjustment",
			zap.Error(err),
		)
	} else {
		holidayCount = calendar.NewHolidaySet(dates).WeekdayHolidaysBetween(due, reference)
	}
	return s.calc.Assess(due, reference, holidayCount)
}
