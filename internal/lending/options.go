// internal/lending/options.go
package lending

import (
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// Option configures the lending service.
type Option func(*service)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *service) {
		s.log = log
	}
}

// WithOutput sets where the plain-text notification diagnostics go.
// Retry lines are written to stderr, the GetBookByISBN line to stdout.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *service) {
		if stdout != nil {
			s.stdout = stdout
		}
		if stderr != nil {
			s.stderr = stderr
		}
	}
}

// WithReviewNotifier replaces the notification step used by GetBookByISBN.
func WithReviewNotifier(n ReviewNotifier) Option {
	return func(s *service) {
		s.notifier = n
	}
}

// WithMeter sets the meter used for the notification counters.
func WithMeter(m metric.Meter) Option {
	return func(s *service) {
		s.meter = m
	}
}
