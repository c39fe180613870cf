package reviews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetReviewsForBook(t *testing.T) {
	ctx := context.Background()

	t.Run("reviews returned in order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/books/9780131495050/reviews", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"reviews":["first","second"]}`))
		}))
		defer srv.Close()

		got, err := NewClient(srv.URL, 100, time.Second).GetReviewsForBook(ctx, "9780131495050")

		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, got)
	})

	t.Run("not found means no reviews", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		got, err := NewClient(srv.URL, 100, time.Second).GetReviewsForBook(ctx, "9780131495050")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	for _, status := range []int{http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status)+" is unavailable", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, 100, time.Second).GetReviewsForBook(ctx, "9780131495050")

			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}

	t.Run("bad request is a plain error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, 100, time.Second).GetReviewsForBook(ctx, "9780131495050")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("connection refused is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		u := srv.URL
		srv.Close()

		_, err := NewClient(u, 100, time.Second).GetReviewsForBook(ctx, "9780131495050")

		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{"9780131495050": {"good"}}

	got, err := src.GetReviewsForBook(context.Background(), "9780131495050")
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, got)

	got, err = src.GetReviewsForBook(context.Background(), "9780306406157")
	require.NoError(t, err)
	assert.Nil(t, got)
}
