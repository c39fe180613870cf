// internal/reviews/client.go
package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Client reads reviews from a remote review service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

func NewClient(baseURL string, rps int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		tracer:     otel.Tracer("libralend/reviews"),
	}
}

type reviewsResponse struct {
	Reviews []string `json:"reviews"`
}

// GetReviewsForBook calls GET {base}/books/{isbn}/reviews. A 404 means the
// book has no reviews. Transport errors, 429 and 5xx are reported as
// ErrUnavailable.
func (c *Client) GetReviewsForBook(ctx context.Context, isbn string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "reviews.get",
		trace.WithAttributes(attribute.String("isbn", isbn)),
	)
	defer span.End()

	reviews, err := c.get(ctx, isbn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("reviews.count", len(reviews)))
	return reviews, nil
}

func (c *Client) get(ctx context.Context, isbn string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	u := fmt.Sprintf("%s/books/%s/reviews", c.baseURL, url.PathEscape(isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body reviewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return body.Reviews, nil
}
