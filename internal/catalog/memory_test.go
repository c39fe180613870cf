package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libralend/internal/ledger"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("add then get returns a copy of the stored book", func(t *testing.T) {
		repo := NewMemoryRepository()
		book := &Book{ISBN: "9780131495050", Title: "Mocked title", Author: "Mocked author"}

		require.NoError(t, repo.AddBook(ctx, book.ISBN, book))

		got, err := repo.GetBookByISBN(ctx, book.ISBN)
		require.NoError(t, err)
		assert.Equal(t, book, got)
		assert.NotSame(t, book, got)

		got.Borrow()
		again, err := repo.GetBookByISBN(ctx, book.ISBN)
		require.NoError(t, err)
		assert.False(t, again.IsBorrowed())
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := NewMemoryRepository().GetBookByISBN(ctx, "9780131495050")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate add", func(t *testing.T) {
		book := &Book{ISBN: "9780131495050"}
		repo := NewMemoryRepository(book)

		assert.ErrorIs(t, repo.AddBook(ctx, book.ISBN, &Book{ISBN: book.ISBN}), ErrDuplicate)
	})

	t.Run("borrow and return are recorded in order", func(t *testing.T) {
		book := &Book{ISBN: "9780131495050"}
		repo := NewMemoryRepository(book, &Book{ISBN: "9780306406157"})

		require.NoError(t, repo.BorrowBook(ctx, book.ISBN, "123456789123"))
		assert.True(t, isBorrowed(t, repo, book.ISBN))
		require.NoError(t, repo.BorrowBook(ctx, "9780306406157", "123456789123"))
		require.NoError(t, repo.ReturnBook(ctx, book.ISBN))
		assert.False(t, isBorrowed(t, repo, book.ISBN))

		records := repo.Records()
		require.Len(t, records, 3)
		assert.Equal(t, ledger.TypeBorrowed, records[0].Type)
		assert.Equal(t, ledger.TypeReturned, records[2].Type)

		var p ledger.BorrowPayload
		require.NoError(t, records[0].Decode(&p))
		assert.Equal(t, "123456789123", p.UserID)

		history, err := repo.History(ctx, book.ISBN)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("wrong state is rejected without a record", func(t *testing.T) {
		repo := NewMemoryRepository(&Book{ISBN: "9780131495050"})

		assert.ErrorIs(t, repo.ReturnBook(ctx, "9780131495050"), ErrNotBorrowed)
		require.NoError(t, repo.BorrowBook(ctx, "9780131495050", "123456789123"))
		assert.ErrorIs(t, repo.BorrowBook(ctx, "9780131495050", "123456789123"), ErrAlreadyBorrowed)
		assert.Len(t, repo.Records(), 1)
	})

	t.Run("record for unknown book", func(t *testing.T) {
		assert.ErrorIs(t, NewMemoryRepository().ReturnBook(ctx, "9780131495050"), ErrNotFound)
	})
}

func TestMemoryRepository_ConcurrentBorrowReturn(t *testing.T) {
	ctx := context.Background()
	const isbn = "9780131495050"
	repo := NewMemoryRepository(&Book{ISBN: isbn})

	var borrowed, returned atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if repo.BorrowBook(ctx, isbn, "123456789123") == nil {
				borrowed.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if repo.ReturnBook(ctx, isbn) == nil {
				returned.Add(1)
			}
			_, _ = repo.GetBookByISBN(ctx, isbn)
		}()
	}
	wg.Wait()

	diff := borrowed.Load() - returned.Load()
	require.Contains(t, []int32{0, 1}, diff)
	assert.Equal(t, diff == 1, isBorrowed(t, repo, isbn))
	assert.Len(t, repo.Records(), int(borrowed.Load()+returned.Load()))
}

func isBorrowed(t *testing.T, repo *MemoryRepository, isbn string) bool {
	t.Helper()
	book, err := repo.GetBookByISBN(context.Background(), isbn)
	require.NoError(t, err)
	return book.IsBorrowed()
}

func TestBook_BorrowReturn(t *testing.T) {
	b := &Book{}
	assert.False(t, b.IsBorrowed())
	b.Borrow()
	assert.True(t, b.IsBorrowed())
	b.Return()
	assert.False(t, b.IsBorrowed())
}
