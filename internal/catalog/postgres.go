// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libralend/internal/ledger"
)

const (
	tableBooks  = "books"
	colISBN     = "isbn"
	colTitle    = "title"
	colAuthor   = "author"
	colBorrowed = "borrowed"
	colUpdated  = "updated_at"

	uniqueViolation      = "23505"
	serializationFailure = "40001"
)

// PostgresRepository stores books in the books table and records every
// borrow and return in the lending ledger.
type PostgresRepository struct {
	db      *sqlx.DB
	ledger  *ledger.Ledger
	dialect goqu.DialectWrapper
}

func NewPostgresRepository(db *sqlx.DB, l *ledger.Ledger) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		ledger:  l,
		dialect: goqu.Dialect("postgres"),
	}
}

func (r *PostgresRepository) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	query, args, err := r.dialect.From(tableBooks).
		Select(colISBN, colTitle, colAuthor, colBorrowed).
		Where(goqu.Ex{colISBN: isbn}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	book := &Book{}
	if err := r.db.GetContext(ctx, book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book %s: %w", isbn, err)
	}
	return book, nil
}

func (r *PostgresRepository) AddBook(ctx context.Context, isbn string, book *Book) error {
	query, args, err := r.dialect.Insert(tableBooks).
		Rows(goqu.Record{
			colISBN:     isbn,
			colTitle:    book.Title,
			colAuthor:   book.Author,
			colBorrowed: book.Borrowed,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert book %s: %w", isbn, err)
	}
	return nil
}

func (r *PostgresRepository) BorrowBook(ctx context.Context, isbn, userID string) error {
	entry, err := ledger.NewEntry(isbn, ledger.TypeBorrowed, ledger.BorrowPayload{UserID: userID})
	if err != nil {
		return err
	}
	return r.setBorrowed(ctx, isbn, true, entry)
}

func (r *PostgresRepository) ReturnBook(ctx context.Context, isbn string) error {
	entry, err := ledger.NewEntry(isbn, ledger.TypeReturned, struct{}{})
	if err != nil {
		return err
	}
	return r.setBorrowed(ctx, isbn, false, entry)
}

// setBorrowed flips the flag and appends the ledger entry in one serializable
// transaction. The update only matches a book in the opposite state.
func (r *PostgresRepository) setBorrowed(ctx context.Context, isbn string, borrowed bool, entry ledger.Entry) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := r.dialect.Update(tableBooks).
		Set(goqu.Record{
			colBorrowed: borrowed,
			colUpdated:  goqu.L("NOW()"),
		}).
		Where(goqu.Ex{colISBN: isbn, colBorrowed: !borrowed}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return txError(fmt.Errorf("failed to update book %s: %w", isbn, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for book %s: %w", isbn, err)
	}
	if n == 0 {
		return r.stateError(ctx, tx, isbn, borrowed)
	}

	version, err := r.ledger.CurrentVersionTx(ctx, tx.Tx, isbn)
	if err != nil {
		return err
	}
	if err := r.ledger.AppendTx(ctx, tx.Tx, isbn, version, entry); err != nil {
		return txError(err)
	}

	if err := tx.Commit(); err != nil {
		return txError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// stateError explains why the update matched no row.
func (r *PostgresRepository) stateError(ctx context.Context, tx *sqlx.Tx, isbn string, borrowed bool) error {
	query, args, err := r.dialect.From(tableBooks).
		Select(colBorrowed).
		Where(goqu.Ex{colISBN: isbn}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}

	var current bool
	if err := tx.GetContext(ctx, &current, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get book %s: %w", isbn, err)
	}
	if borrowed {
		return ErrAlreadyBorrowed
	}
	return ErrNotBorrowed
}

// txError reports serialization failures as ledger conflicts.
func txError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == serializationFailure {
		return fmt.Errorf("%w: %v", ledger.ErrConcurrencyConflict, err)
	}
	return err
}

// History returns the lending ledger for a book.
func (r *PostgresRepository) History(ctx context.Context, isbn string) ([]ledger.Entry, error) {
	return r.ledger.History(ctx, isbn)
}
