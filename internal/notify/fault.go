// internal/notify/fault.go
package notify

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FaultSink injects delivery failures in front of another sink. The first
// failures calls to Send fail with ErrDelivery, later calls reach next.
type FaultSink struct {
	next     Sink
	failures int
	tracer   trace.Tracer

	mu    sync.Mutex
	calls int
}

func NewFaultSink(next Sink, failures int) *FaultSink {
	return &FaultSink{
		next:     next,
		failures: failures,
		tracer:   otel.Tracer("libralend/notify"),
	}
}

func (s *FaultSink) Send(ctx context.Context, message string) error {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if call <= s.failures {
		_, span := s.tracer.Start(ctx, "notify.fault",
			trace.WithAttributes(attribute.Int("call", call), attribute.Int("failures", s.failures)),
		)
		span.End()
		return fmt.Errorf("%w: injected fault %d/%d", ErrDelivery, call, s.failures)
	}
	return s.next.Send(ctx, message)
}
