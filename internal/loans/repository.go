// internal/loans/repository.go
package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the loan read model in the system of record.
type Repository interface {
	Insert(ctx context.Context, loan *Loan) error
	Get(ctx context.Context, id uuid.UUID) (*Loan, error)
	Update(ctx context.Context, loan *Loan) error
	List(ctx context.Context, status *Status) ([]*Loan, error)
	// ListExpired returns loans still in active or renewed state whose
	// due date has passed as of the given day.
	ListExpired(ctx context.Context, asOf time.Time) ([]*Loan, error)
}

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a loan repository over Postgres.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const loanColumns = `id, book_id, user_id, loan_date, due_date, returned_at, status,
	renewals, origin, fine_amount, days_late, notes, version, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*Loan, error) {
	loan := &Loan{}
	var returnedAt sql.NullTime
	err := row.Scan(
		&loan.ID,
		&loan.BookID,
		&loan.UserID,
		&loan.LoanDate,
		&loan.DueDate,
		&returnedAt,
		&loan.Status,
		&loan.Renewals,
		&loan.Origin,
		&loan.FineAmount,
		&loan.DaysLate,
		&loan.Notes,
		&loan.Version,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if returnedAt.Valid {
		t := returnedAt.Time
		loan.ReturnedAt = &t
	}
	return loan, nil
}

func (r *postgresRepository) Insert(ctx context.Context, loan *Loan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loans (id, book_id, user_id, loan_date, due_date, status,
			renewals, origin, fine_amount, days_late, notes, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, loan.ID, loan.BookID, loan.UserID, loan.LoanDate, loan.DueDate, loan.Status,
		loan.Renewals, loan.Origin, loan.FineAmount, loan.DaysLate, loan.Notes, loan.Version)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Loan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE id = $1
	`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

func (r *postgresRepository) Update(ctx context.Context, loan *Loan) error {
	var returnedAt sql.NullTime
	if loan.ReturnedAt != nil {
		returnedAt = sql.NullTime{Time: *loan.ReturnedAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE loans
		SET due_date = $1, returned_at = $2, status = $3, renewals = $4,
			fine_amount = $5, days_late = $6, notes = $7,
			version = version + 1, updated_at = NOW()
		WHERE id = $8
	`, loan.DueDate, returnedAt, loan.Status, loan.Renewals,
		loan.FineAmount, loan.DaysLate, loan.Notes, loan.ID)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLoanNotFound
	}
	loan.Version++
	return nil
}

func (r *postgresRepository) List(ctx context.Context, status *Status) ([]*Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY loan_date DESC LIMIT 200`

	return r.queryLoans(ctx, query, args...)
}

func (r *postgresRepository) ListExpired(ctx context.Context, asOf time.Time) ([]*Loan, error) {
	return r.queryLoans(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE status IN ('active', 'renewed')
		AND due_date::date < $1::date
		ORDER BY due_date
	`, asOf)
}

func (r *postgresRepository) queryLoans(ctx context.Context, query string, args ...any) ([]*Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return loans, nil
}
