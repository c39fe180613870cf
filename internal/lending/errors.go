// internal/lending/errors.go
package lending

import "errors"

// Error kinds. Every failure returned by the Service unwraps to exactly one.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state")
	ErrReviewUnavailable  = errors.New("review service unavailable")
	ErrNoReviews          = errors.New("no reviews found")
	ErrNotificationFailed = errors.New("notification failed")
)

// Error is a classified failure with a fixed message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrInvalidBook          = newError(ErrInvalidArgument, "invalid book")
	ErrInvalidISBN          = newError(ErrInvalidArgument, "invalid isbn")
	ErrInvalidTitle         = newError(ErrInvalidArgument, "invalid title")
	ErrInvalidAuthor        = newError(ErrInvalidArgument, "invalid author")
	ErrInvalidBorrowedState = newError(ErrInvalidArgument, "a new book must not be borrowed")
	ErrInvalidUser          = newError(ErrInvalidArgument, "invalid user")
	ErrInvalidUserID        = newError(ErrInvalidArgument, "invalid user id")
	ErrInvalidUserName      = newError(ErrInvalidArgument, "invalid user name")
	ErrInvalidNotifier      = newError(ErrInvalidArgument, "invalid notification service")

	ErrBookNotFound      = newError(ErrNotFound, "book not found")
	ErrUserNotRegistered = newError(ErrNotFound, "user not registered")

	ErrBookExists = newError(ErrConflict, "book already exists")
	ErrUserExists = newError(ErrConflict, "user already exists")

	ErrBookAlreadyBorrowed = newError(ErrInvalidState, "book is already borrowed")
	ErrBookNotBorrowed     = newError(ErrInvalidState, "book is not borrowed")
)
