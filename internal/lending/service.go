// internal/lending/service.go
package lending

import (
	"context"

	"libralend/internal/catalog"
	"libralend/internal/membership"
)

// MaxNotifyAttempts bounds delivery attempts in NotifyUserWithBookReviews.
const MaxNotifyAttempts = 5

// Service defines the lending operations.
type Service interface {
	AddBook(ctx context.Context, book *catalog.Book) error
	RegisterUser(ctx context.Context, user *membership.User) error
	BorrowBook(ctx context.Context, isbn, userID string) error
	ReturnBook(ctx context.Context, isbn string) error
	ReviewNotifier
	GetBookByISBN(ctx context.Context, isbn, userID string) (*catalog.Book, error)
}

// ReviewNotifier sends a book's reviews to a user. GetBookByISBN reaches the
// notification step through this interface.
type ReviewNotifier interface {
	NotifyUserWithBookReviews(ctx context.Context, isbn, userID string) error
}

// ReviewNotifierFunc adapts a plain function to a ReviewNotifier.
type ReviewNotifierFunc func(ctx context.Context, isbn, userID string) error

func (f ReviewNotifierFunc) NotifyUserWithBookReviews(ctx context.Context, isbn, userID string) error {
	return f(ctx, isbn, userID)
}
