// internal/lending/implementation.go
package lending

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"libralend/internal/catalog"
	"libralend/internal/membership"
	"libralend/internal/notify"
	"libralend/internal/reviews"
	"libralend/internal/validate"
)

// service implements the Service interface.
type service struct {
	catalog  catalog.Repository
	registry membership.Repository
	reviews  reviews.Source
	notifier ReviewNotifier

	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer

	tracer    trace.Tracer
	meter     metric.Meter
	attempts  metric.Int64Counter
	exhausted metric.Int64Counter
}

// NewService creates a new lending service instance.
func NewService(books catalog.Repository, users membership.Repository, source reviews.Source, opts ...Option) Service {
	s := &service{
		catalog:  books,
		registry: users,
		reviews:  source,
		log:      zerolog.Nop(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		tracer:   otel.Tracer("libralend/lending"),
		meter:    otel.Meter("libralend/lending"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = s
	}

	var err error
	if s.attempts, err = s.meter.Int64Counter("lending.notification.attempts",
		metric.WithDescription("Notification delivery attempts by outcome"),
	); err != nil {
		s.log.Warn().Err(err).Msg("notification attempt counter disabled")
		s.attempts = nil
	}
	if s.exhausted, err = s.meter.Int64Counter("lending.notification.exhausted",
		metric.WithDescription("Notifications that failed on every attempt"),
	); err != nil {
		s.log.Warn().Err(err).Msg("notification exhausted counter disabled")
		s.exhausted = nil
	}

	return s
}

// AddBook validates a new book and stores it in the catalog.
func (s *service) AddBook(ctx context.Context, book *catalog.Book) error {
	var isbn string
	if book != nil {
		isbn = book.ISBN
	}
	ctx, span := s.tracer.Start(ctx, "lending.AddBook", trace.WithAttributes(attribute.String("isbn", isbn)))
	defer span.End()

	return s.finish(span, "add book", s.addBook(ctx, book))
}

func (s *service) addBook(ctx context.Context, book *catalog.Book) error {
	switch {
	case book == nil:
		return ErrInvalidBook
	case !validate.ISBN(book.ISBN):
		return ErrInvalidISBN
	case !validate.Title(book.Title):
		return ErrInvalidTitle
	case !validate.Author(book.Author):
		return ErrInvalidAuthor
	case book.IsBorrowed():
		return ErrInvalidBorrowedState
	}

	if _, err := s.findBook(ctx, book.ISBN); err == nil {
		return ErrBookExists
	} else if !errors.Is(err, ErrBookNotFound) {
		return err
	}

	if err := s.catalog.AddBook(ctx, book.ISBN, book); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			return ErrBookExists
		}
		return fmt.Errorf("failed to add book: %w", err)
	}
	return nil
}

// RegisterUser validates a new user and stores it in the registry.
func (s *service) RegisterUser(ctx context.Context, user *membership.User) error {
	var id string
	if user != nil {
		id = user.ID
	}
	ctx, span := s.tracer.Start(ctx, "lending.RegisterUser", trace.WithAttributes(attribute.String("user_id", id)))
	defer span.End()

	return s.finish(span, "register user", s.registerUser(ctx, user))
}

func (s *service) registerUser(ctx context.Context, user *membership.User) error {
	switch {
	case user == nil:
		return ErrInvalidUser
	case !validate.UserID(user.ID):
		return ErrInvalidUserID
	case !validate.Name(user.Name):
		return ErrInvalidUserName
	case user.Notifier == nil:
		return ErrInvalidNotifier
	}

	if _, err := s.findUser(ctx, user.ID); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, ErrUserNotRegistered) {
		return err
	}

	if err := s.registry.RegisterUser(ctx, user.ID, user); err != nil {
		if errors.Is(err, membership.ErrDuplicate) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// BorrowBook lends an available book to a registered user.
func (s *service) BorrowBook(ctx context.Context, isbn, userID string) error {
	ctx, span := s.start(ctx, "lending.BorrowBook", isbn, userID)
	defer span.End()

	return s.finish(span, "borrow book", s.borrowBook(ctx, isbn, userID))
}

func (s *service) borrowBook(ctx context.Context, isbn, userID string) error {
	if !validate.ISBN(isbn) {
		return ErrInvalidISBN
	}
	book, err := s.findBook(ctx, isbn)
	if err != nil {
		return err
	}
	if !validate.UserID(userID) {
		return ErrInvalidUserID
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}
	if book.IsBorrowed() {
		return ErrBookAlreadyBorrowed
	}

	book.Borrow()
	if err := s.catalog.BorrowBook(ctx, isbn, userID); err != nil {
		book.Return()
		return recordError("borrow", err)
	}
	return nil
}

// ReturnBook takes a borrowed book back.
func (s *service) ReturnBook(ctx context.Context, isbn string) error {
	ctx, span := s.start(ctx, "lending.ReturnBook", isbn, "")
	defer span.End()

	return s.finish(span, "return book", s.returnBook(ctx, isbn))
}

func (s *service) returnBook(ctx context.Context, isbn string) error {
	if !validate.ISBN(isbn) {
		return ErrInvalidISBN
	}
	book, err := s.findBook(ctx, isbn)
	if err != nil {
		return err
	}
	if !book.IsBorrowed() {
		return ErrBookNotBorrowed
	}

	book.Return()
	if err := s.catalog.ReturnBook(ctx, isbn); err != nil {
		book.Borrow()
		return recordError("return", err)
	}
	return nil
}

// NotifyUserWithBookReviews sends the reviews of a book to a user, making up
// to MaxNotifyAttempts delivery attempts.
func (s *service) NotifyUserWithBookReviews(ctx context.Context, isbn, userID string) error {
	ctx, span := s.start(ctx, "lending.NotifyUserWithBookReviews", isbn, userID)
	defer span.End()

	return s.finish(span, "notify user", s.notifyUserWithBookReviews(ctx, isbn, userID))
}

func (s *service) notifyUserWithBookReviews(ctx context.Context, isbn, userID string) error {
	if !validate.ISBN(isbn) {
		return ErrInvalidISBN
	}
	if !validate.UserID(userID) {
		return ErrInvalidUserID
	}
	if _, err := s.findBook(ctx, isbn); err != nil {
		return err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	texts, err := s.reviews.GetReviewsForBook(ctx, isbn)
	if err != nil {
		if errors.Is(err, reviews.ErrUnavailable) {
			return ErrReviewUnavailable
		}
		return fmt.Errorf("failed to get reviews: %w", err)
	}
	if len(texts) == 0 {
		return ErrNoReviews
	}

	return s.deliver(ctx, user.Notifier, strings.Join(texts, "\n"))
}

// deliver runs the retry loop. Attempts are sequential with no delay and the
// loop is not cut short by ctx.
func (s *service) deliver(ctx context.Context, sink notify.Sink, message string) error {
	if sink == nil {
		return fmt.Errorf("%w: user has no notification service", ErrNotificationFailed)
	}

	var lastErr error
	for attempt := 1; attempt <= MaxNotifyAttempts; attempt++ {
		err := sink.Send(ctx, message)
		if err == nil {
			s.count(ctx, s.attempts, attribute.String("outcome", "delivered"))
			return nil
		}
		lastErr = err
		s.count(ctx, s.attempts, attribute.String("outcome", "failed"))
		s.log.Debug().Err(err).Int("attempt", attempt).Msg("notification attempt failed")
		fmt.Fprintf(s.stderr, "Notification failed! Retrying attempt %d/%d\n", attempt, MaxNotifyAttempts)
	}

	s.count(ctx, s.exhausted)
	return fmt.Errorf("%w: %w", ErrNotificationFailed, lastErr)
}

// GetBookByISBN returns an available book and notifies the user of its
// reviews on the way. A failed notification is reported on stdout only.
func (s *service) GetBookByISBN(ctx context.Context, isbn, userID string) (*catalog.Book, error) {
	ctx, span := s.start(ctx, "lending.GetBookByISBN", isbn, userID)
	defer span.End()

	book, err := s.getBookByISBN(ctx, isbn, userID)
	return book, s.finish(span, "get book", err)
}

func (s *service) getBookByISBN(ctx context.Context, isbn, userID string) (*catalog.Book, error) {
	if !validate.ISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	if !validate.UserID(userID) {
		return nil, ErrInvalidUserID
	}
	book, err := s.findBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book.IsBorrowed() {
		return nil, ErrBookAlreadyBorrowed
	}

	if err := s.notifier.NotifyUserWithBookReviews(ctx, isbn, userID); err != nil {
		s.log.Warn().Err(err).Str("isbn", isbn).Str("user_id", userID).Msg("review notification dropped")
		fmt.Fprintln(s.stdout, "Notification failed!")
	}
	return book, nil
}

// recordError translates a catalog failure to record a borrow or return. The
// catalog rechecks the state under its own lock, so a concurrent borrow or
// return surfaces here.
func recordError(op string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrAlreadyBorrowed):
		return ErrBookAlreadyBorrowed
	case errors.Is(err, catalog.ErrNotBorrowed):
		return ErrBookNotBorrowed
	case errors.Is(err, catalog.ErrNotFound):
		return ErrBookNotFound
	default:
		return fmt.Errorf("failed to record %s: %w", op, err)
	}
}

func (s *service) findBook(ctx context.Context, isbn string) (*catalog.Book, error) {
	book, err := s.catalog.GetBookByISBN(ctx, isbn)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return nil, ErrBookNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get book: %w", err)
	case book == nil:
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *service) findUser(ctx context.Context, id string) (*membership.User, error) {
	user, err := s.registry.GetUserByID(ctx, id)
	switch {
	case errors.Is(err, membership.ErrNotFound):
		return nil, ErrUserNotRegistered
	case err != nil:
		return nil, fmt.Errorf("failed to get user: %w", err)
	case user == nil:
		return nil, ErrUserNotRegistered
	}
	return user, nil
}

func (s *service) start(ctx context.Context, name, isbn, userID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("isbn", isbn)}
	if userID != "" {
		attrs = append(attrs, attribute.String("user_id", userID))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *service) finish(span trace.Span, op string, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Debug().Err(err).Msgf("%s failed", op)
		return err
	}
	s.log.Debug().Msgf("%s succeeded", op)
	return nil
}

func (s *service) count(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
