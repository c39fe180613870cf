package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libralend/internal/catalog"
	"libralend/internal/db/dbtest"
	"libralend/internal/ledger"
	"libralend/internal/validate"
)

// freshISBN returns a checksum-valid ISBN unlikely to exist in a shared test database.
func freshISBN() string {
	prefix := fmt.Sprintf("979%09d", time.Now().UnixNano()%1e9)
	return prefix + string(validate.CheckDigit(prefix))
}

func TestPostgresRepository(t *testing.T) {
	conn := dbtest.Open(t)
	repo := catalog.NewPostgresRepository(conn, ledger.New(conn.DB))
	ctx := context.Background()
	isbn := freshISBN()

	_, err := repo.GetBookByISBN(ctx, isbn)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	require.NoError(t, repo.AddBook(ctx, isbn, &catalog.Book{ISBN: isbn, Title: "Mocked title", Author: "Mocked author"}))
	assert.ErrorIs(t, repo.AddBook(ctx, isbn, &catalog.Book{ISBN: isbn, Title: "t", Author: "a"}), catalog.ErrDuplicate)

	require.NoError(t, repo.BorrowBook(ctx, isbn, "123456789123"))
	book, err := repo.GetBookByISBN(ctx, isbn)
	require.NoError(t, err)
	assert.True(t, book.IsBorrowed())

	require.NoError(t, repo.ReturnBook(ctx, isbn))
	book, err = repo.GetBookByISBN(ctx, isbn)
	require.NoError(t, err)
	assert.False(t, book.IsBorrowed())

	history, err := repo.History(ctx, isbn)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ledger.TypeBorrowed, history[0].Type)
	assert.Equal(t, ledger.TypeReturned, history[1].Type)
}

func TestPostgresRepository_BorrowUnknownBook(t *testing.T) {
	conn := dbtest.Open(t)
	repo := catalog.NewPostgresRepository(conn, ledger.New(conn.DB))

	err := repo.BorrowBook(context.Background(), freshISBN(), "123456789123")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestPostgresRepository_WrongState(t *testing.T) {
	conn := dbtest.Open(t)
	repo := catalog.NewPostgresRepository(conn, ledger.New(conn.DB))
	ctx := context.Background()
	isbn := freshISBN()

	require.NoError(t, repo.AddBook(ctx, isbn, &catalog.Book{ISBN: isbn, Title: "t", Author: "a"}))
	assert.ErrorIs(t, repo.ReturnBook(ctx, isbn), catalog.ErrNotBorrowed)

	require.NoError(t, repo.BorrowBook(ctx, isbn, "123456789123"))
	assert.ErrorIs(t, repo.BorrowBook(ctx, isbn, "123456789124"), catalog.ErrAlreadyBorrowed)

	history, err := repo.History(ctx, isbn)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
