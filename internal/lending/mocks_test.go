package lending

import (
	"context"

	"github.com/stretchr/testify/mock"

	"libralend/internal/catalog"
	"libralend/internal/membership"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Book), args.Error(1)
}

func (m *mockCatalog) AddBook(ctx context.Context, isbn string, book *catalog.Book) error {
	args := m.Called(ctx, isbn, book)
	return args.Error(0)
}

func (m *mockCatalog) BorrowBook(ctx context.Context, isbn, userID string) error {
	args := m.Called(ctx, isbn, userID)
	return args.Error(0)
}

func (m *mockCatalog) ReturnBook(ctx context.Context, isbn string) error {
	args := m.Called(ctx, isbn)
	return args.Error(0)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) GetUserByID(ctx context.Context, id string) (*membership.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.User), args.Error(1)
}

func (m *mockRegistry) RegisterUser(ctx context.Context, id string, user *membership.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

type mockReviews struct {
	mock.Mock
}

func (m *mockReviews) GetReviewsForBook(ctx context.Context, isbn string) ([]string, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Send(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
