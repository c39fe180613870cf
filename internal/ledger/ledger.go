// internal/ledger/ledger.go
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrEmptyAppend         = errors.New("no entries to append")
)

const (
	// TypeBorrowed records a book handed out to a user.
	TypeBorrowed = "BookBorrowed"
	// TypeReturned records a book coming back.
	TypeReturned = "BookReturned"
)

// Entry is one immutable line of a book's lending history.
type Entry struct {
	ID        int64               `json:"id"`
	EntryID   uuid.UUID           `json:"entry_id"`
	ISBN      string              `json:"isbn"`
	Type      string              `json:"type"`
	Payload   jsoniter.RawMessage `json:"payload"`
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"created_at"`
}

// BorrowPayload is the payload of a TypeBorrowed entry.
type BorrowPayload struct {
	UserID string `json:"user_id"`
}

// NewEntry builds an entry with a fresh ID and the JSON encoding of payload.
// Version and timestamps are assigned on append.
func NewEntry(isbn, entryType string, payload any) (Entry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal %s payload: %w", entryType, err)
	}

	return Entry{
		EntryID: uuid.New(),
		ISBN:    isbn,
		Type:    entryType,
		Payload: data,
	}, nil
}

// Decode unmarshals the entry payload into v.
func (e Entry) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Ledger is the Postgres-backed, append-only lending history
type Ledger struct {
	db     *sql.DB
	tracer trace.Tracer
}

func New(db *sql.DB) *Ledger {
	return &Ledger{
		db:     db,
		tracer: otel.Tracer("libralend/ledger"),
	}
}

// Append atomically appends entries for one ISBN with optimistic concurrency control
func (l *Ledger) Append(ctx context.Context, isbn string, expectedVersion int, entries ...Entry) error {
	if len(entries) == 0 {
		return ErrEmptyAppend
	}

	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := l.AppendTx(ctx, tx, isbn, expectedVersion, entries...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AppendTx appends entries inside a transaction owned by the caller, so the
// entries commit or roll back together with the caller's own writes.
func (l *Ledger) AppendTx(ctx context.Context, tx *sql.Tx, isbn string, expectedVersion int, entries ...Entry) error {
	if len(entries) == 0 {
		return ErrEmptyAppend
	}

	ctx, span := l.tracer.Start(ctx, "ledger.append",
		trace.WithAttributes(
			attribute.String("isbn", isbn),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("entry.count", len(entries)),
		),
	)
	defer span.End()

	currentVersion, err := l.CurrentVersionTx(ctx, tx, isbn)
	if err != nil {
		return err
	}

	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lending_ledger (entry_id, isbn, entry_type, payload, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		version := expectedVersion + i + 1

		var id int64
		err = stmt.QueryRowContext(ctx,
			entry.EntryID,
			isbn,
			entry.Type,
			[]byte(entry.Payload),
			version,
			time.Now().UTC(),
		).Scan(&id)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("insert entry %d: %w", i, err)
		}

		span.AddEvent("entry.appended", trace.WithAttributes(
			attribute.Int64("entry.id", id),
			attribute.Int("entry.version", version),
			attribute.String("entry.type", entry.Type),
		))
	}

	return nil
}

// CurrentVersionTx is CurrentVersion read inside tx.
func (l *Ledger) CurrentVersionTx(ctx context.Context, tx *sql.Tx, isbn string) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM lending_ledger
		WHERE isbn = $1
	`, isbn).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query current version: %w", err)
	}
	return version, nil
}

// CurrentVersion returns the latest version recorded for an ISBN, 0 if none.
func (l *Ledger) CurrentVersion(ctx context.Context, isbn string) (int, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.current_version",
		trace.WithAttributes(attribute.String("isbn", isbn)),
	)
	defer span.End()

	var version int
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM lending_ledger
		WHERE isbn = $1
	`, isbn).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query version: %w", err)
	}

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

// History returns every entry for an ISBN in version order.
func (l *Ledger) History(ctx context.Context, isbn string) ([]Entry, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.history",
		trace.WithAttributes(attribute.String("isbn", isbn)),
	)
	defer span.End()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, entry_id, isbn, entry_type, payload, version, created_at
		FROM lending_ledger
		WHERE isbn = $1
		ORDER BY version ASC
	`, isbn)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EntryID, &e.ISBN, &e.Type, &payload, &e.Version, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Payload = payload
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	span.SetAttributes(attribute.Int("entries.loaded", len(entries)))
	return entries, nil
}
