// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/migueldrlds/bibliteK-sub000/pkg/eventstore"
)

var (
	// ErrBookNotFound means no catalogued title matches the id.
	ErrBookNotFound = errors.New("book not found")
	// ErrNoStock means an adjustment would drive a campus count below zero.
	ErrNoStock = errors.New("no copies available at this location")
	// ErrHolidayNotFound means no flagged date matches the id.
	ErrHolidayNotFound = errors.New("holiday not found")
)

// service implements the Service interface.
type service struct {
	db      *sql.DB
	journal *eventstore.Journal
	logger  *zap.Logger
}

// NewService creates a new catalog service instance.
func NewService(db *sql.DB, journal *eventstore.Journal, logger *zap.Logger) Service {
	return &service{db: db, journal: journal, logger: logger}
}

// AddBook creates a new title and seeds its per-campus inventory.
func (s *service) AddBook(ctx context.Context, isbn, title, author, classification string, stock map[string]int) (*Book, error) {
	id := uuid.New()

	change := BookAddedChange{
		ID:             id,
		ISBN:           isbn,
		Title:          title,
		Author:         author,
		Classification: classification,
	}
	if err := s.journal.Append(ctx, id, "book", "BookAdded", change, 0); err != nil {
		return nil, fmt.Errorf("journal book: %w", err)
	}

	book := &Book{
		ID:             id,
		ISBN:           isbn,
		Title:          title,
		Author:         author,
		Classification: classification,
		Status:         BookActive,
		Version:        1,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (id, isbn, title, author, classification, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, book.ID, book.ISBN, book.Title, book.Author, book.Classification, book.Status, book.Version)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	for location, available := range stock {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO inventory (book_id, location, available)
			VALUES ($1, $2, $3)
		`, book.ID, location, available)
		if err != nil {
			return nil, fmt.Errorf("insert inventory for %s: %w", location, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("book added",
		zap.String("book_id", id.String()),
		zap.String("title", title),
		zap.String("classification", classification),
	)
	return book, nil
}

// GetBook retrieves a title by id.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	book := &Book{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, isbn, title, author, classification, status, version, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id).Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.Classification,
		&book.Status,
		&book.Version,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// GetInventory lists the per-campus copy counts of a book.
func (s *service) GetInventory(ctx context.Context, bookID uuid.UUID) ([]InventoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, location, available
		FROM inventory
		WHERE book_id = $1
		ORDER BY location
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var records []InventoryRecord
	for rows.Next() {
		var rec InventoryRecord
		if err := rows.Scan(&rec.BookID, &rec.Location, &rec.Available); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	if len(records) == 0 {
		if _, err := s.GetBook(ctx, bookID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// AdjustInventory moves the available count of a book at one campus by
// delta. Counts never go negative: a checkout against an exhausted
// campus fails with ErrNoStock. A positive delta against a campus the
// book has never been stocked at creates the record.
func (s *service) AdjustInventory(ctx context.Context, bookID uuid.UUID, location string, delta int) (*InventoryRecord, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	rec := &InventoryRecord{BookID: bookID, Location: location}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO inventory (book_id, location, available)
		VALUES ($1, $2, GREATEST($3, 0))
		ON CONFLICT (book_id, location) DO UPDATE
		SET available = inventory.available + $3
		WHERE inventory.available + $3 >= 0
		RETURNING available
	`, bookID, location, delta).Scan(&rec.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoStock
		}
		return nil, fmt.Errorf("adjust inventory: %w", err)
	}

	version, err := s.journal.CurrentVersion(ctx, bookID)
	if err == nil {
		change := InventoryAdjustedChange{
			BookID:    bookID,
			Location:  location,
			Delta:     delta,
			Available: rec.Available,
		}
		if err := s.journal.Append(ctx, bookID, "book", "InventoryAdjusted", change, version); err != nil {
			s.logger.Warn("inventory adjustment not journaled",
				zap.String("book_id", bookID.String()),
				zap.Error(err),
			)
		}
	}

	return rec, nil
}

// RemoveBook retires a title from the catalog.
func (s *service) RemoveBook(ctx context.Context, id uuid.UUID) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	// Inventory movements advance the book's journal past the read-model
	// version, so the removal append must check against the journal's
	// own current version.
	version, err := s.journal.CurrentVersion(ctx, id)
	if err != nil {
		return fmt.Errorf("journal version: %w", err)
	}
	if err := s.journal.Append(ctx, id, "book", "BookRemoved", BookRemovedChange{ID: id}, version); err != nil {
		return fmt.Errorf("journal removal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE books
		SET status = 'retired', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, id, book.Version)
	if err != nil {
		return fmt.Errorf("retire book: %w", err)
	}
	return nil
}

// Search finds titles by title, author, or classification.
func (s *service) Search(ctx context.Context, query string) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, isbn, title, author, classification, status, version, created_at, updated_at
		FROM books
		WHERE title ILIKE '%' || $1 || '%'
		OR author ILIKE '%' || $1 || '%'
		OR classification ILIKE '%' || $1 || '%'
		ORDER BY title
		LIMIT 25
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book := &Book{}
		if err := rows.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author, &book.Classification,
			&book.Status, &book.Version, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// ListHolidays returns every flagged date.
func (s *service) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, COALESCE(name, '')
		FROM holidays
		ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// AddHoliday flags a date as non-business.
func (s *service) AddHoliday(ctx context.Context, date time.Time, name string) (*Holiday, error) {
	h := &Holiday{ID: uuid.New(), Date: date, Name: name}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO NOTHING
	`, h.ID, h.Date, h.Name)
	if err != nil {
		return nil, fmt.Errorf("insert holiday: %w", err)
	}
	return h, nil
}

// RemoveHoliday unflags a date.
func (s *service) RemoveHoliday(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrHolidayNotFound
	}
	return nil
}
