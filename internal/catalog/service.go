// internal/catalog/service.go
package catalog

import (
	"context"
	"errors"

	"libralend/internal/ledger"
)

var (
	// ErrNotFound is returned when no book is stored under an ISBN.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicate is returned when a book is already stored under an ISBN.
	ErrDuplicate = errors.New("book already exists")
	// ErrAlreadyBorrowed is returned by BorrowBook when the stored book is lent out.
	ErrAlreadyBorrowed = errors.New("book already borrowed")
	// ErrNotBorrowed is returned by ReturnBook when the stored book is not lent out.
	ErrNotBorrowed = errors.New("book not borrowed")
)

// Repository defines the contract for book storage. BorrowBook and ReturnBook
// check and flip the stored flag atomically.
type Repository interface {
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)
	AddBook(ctx context.Context, isbn string, book *Book) error
	BorrowBook(ctx context.Context, isbn, userID string) error
	ReturnBook(ctx context.Context, isbn string) error
}

// HistoryReader is implemented by repositories that keep a lending ledger.
type HistoryReader interface {
	History(ctx context.Context, isbn string) ([]ledger.Entry, error)
}
