// pkg/eventstore/eventstore.go
package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrVersionConflict = errors.New("version conflict: journal advanced concurrently")
	ErrRecordNotFound  = errors.New("record has no journal entries")
)

// Entry is one recorded state change for a record (a loan, a book, or
// a user). Entries for a record are strictly ordered by Version.
type Entry struct {
	ID         int64           `json:"id"`
	RecordID   uuid.UUID       `json:"record_id"`
	RecordType string          `json:"record_type"`
	Change     string          `json:"change"`
	Payload    json.RawMessage `json:"payload"`
	Version    int             `json:"version"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Journal is an append-only history of record state changes, kept next
// to the read model so that circulation activity can be audited.
type Journal struct {
	db     *sql.DB
	tracer trace.Tracer
}

// New creates a journal over the given database handle.
func New(db *sql.DB) *Journal {
	return &Journal{
		db:     db,
		tracer: otel.Tracer("bibliotek/journal"),
	}
}

// Append records a state change for recordID, enforcing an optimistic
// version check: expectedVersion must equal the latest recorded
// version, otherwise ErrVersionConflict is returned and nothing is
// written.
func (j *Journal) Append(ctx context.Context, recordID uuid.UUID, recordType, change string, payload any, expectedVersion int) error {
	ctx, span := j.tracer.Start(ctx, "journal.append",
		trace.WithAttributes(
			attribute.String("record.id", recordID.String()),
			attribute.String("record.type", recordType),
			attribute.String("record.change", change),
			attribute.Int("expected.version", expectedVersion),
		),
	)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM journal
		WHERE record_id = $1
	`, recordID).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("query current version: %w", err)
	}

	if current != expectedVersion {
		span.SetAttributes(attribute.Int("actual.version", current))
		return ErrVersionConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journal (record_id, record_type, change, payload, version, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, recordID, recordType, change, body, expectedVersion+1, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrVersionConflict
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// History returns every entry for recordID in version order.
func (j *Journal) History(ctx context.Context, recordID uuid.UUID) ([]Entry, error) {
	ctx, span := j.tracer.Start(ctx, "journal.history",
		trace.WithAttributes(attribute.String("record.id", recordID.String())),
	)
	defer span.End()

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, record_id, record_type, change, payload, version, recorded_at
		FROM journal
		WHERE record_id = $1
		ORDER BY version ASC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RecordID, &e.RecordType, &e.Change, &e.Payload, &e.Version, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrRecordNotFound
	}

	span.SetAttributes(attribute.Int("entries.loaded", len(entries)))
	return entries, nil
}

// CurrentVersion returns the latest recorded version for recordID,
// zero when the record has no history yet.
func (j *Journal) CurrentVersion(ctx context.Context, recordID uuid.UUID) (int, error) {
	var version int
	err := j.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM journal
		WHERE record_id = $1
	`, recordID).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("query version: %w", err)
	}
	return version, nil
}
