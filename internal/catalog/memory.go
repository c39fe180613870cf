// internal/catalog/memory.go
package catalog

import (
	"context"
	"sync"

	"libralend/internal/ledger"
)

// MemoryRepository keeps books in process memory. Books go in and come out as
// copies; the borrowed flag only changes under the lock in BorrowBook and
// ReturnBook.
type MemoryRepository struct {
	mu      sync.RWMutex
	books   map[string]*Book
	records []ledger.Entry
}

func NewMemoryRepository(seed ...*Book) *MemoryRepository {
	repo := &MemoryRepository{
		books: make(map[string]*Book, len(seed)),
	}
	for _, b := range seed {
		stored := *b
		repo.books[b.ISBN] = &stored
	}
	return repo
}

func (r *MemoryRepository) GetBookByISBN(_ context.Context, isbn string) (*Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[isbn]
	if !ok {
		return nil, ErrNotFound
	}
	out := *book
	return &out, nil
}

func (r *MemoryRepository) AddBook(_ context.Context, isbn string, book *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[isbn]; ok {
		return ErrDuplicate
	}
	stored := *book
	r.books[isbn] = &stored
	return nil
}

func (r *MemoryRepository) BorrowBook(_ context.Context, isbn, userID string) error {
	return r.record(isbn, ledger.TypeBorrowed, ledger.BorrowPayload{UserID: userID}, true)
}

func (r *MemoryRepository) ReturnBook(_ context.Context, isbn string) error {
	return r.record(isbn, ledger.TypeReturned, struct{}{}, false)
}

func (r *MemoryRepository) record(isbn, entryType string, payload any, borrowed bool) error {
	entry, err := ledger.NewEntry(isbn, entryType, payload)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[isbn]
	switch {
	case !ok:
		return ErrNotFound
	case borrowed && book.IsBorrowed():
		return ErrAlreadyBorrowed
	case !borrowed && !book.IsBorrowed():
		return ErrNotBorrowed
	}
	book.Borrowed = borrowed

	r.records = append(r.records, entry)
	return nil
}

// Records returns the borrow/return history in the order it was recorded.
func (r *MemoryRepository) Records() []ledger.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, len(r.records))
	copy(out, r.records)
	return out
}

// History returns the recorded entries for one ISBN.
func (r *MemoryRepository) History(_ context.Context, isbn string) ([]ledger.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ledger.Entry
	for _, e := range r.records {
		if e.ISBN == isbn {
			out = append(out, e)
		}
	}
	return out, nil
}
