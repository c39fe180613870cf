// internal/reviews/source.go
package reviews

import (
	"context"
	"errors"
)

// ErrUnavailable signals a transient failure of the review service.
var ErrUnavailable = errors.New("review service unavailable")

// Source fetches the review texts for a book. An empty result is not an error.
type Source interface {
	GetReviewsForBook(ctx context.Context, isbn string) ([]string, error)
}

// StaticSource serves reviews from a fixed map.
type StaticSource map[string][]string

func (s StaticSource) GetReviewsForBook(_ context.Context, isbn string) ([]string, error) {
	return s[isbn], nil
}
