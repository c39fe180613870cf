// internal/notify/resolver.go
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Resolver turns a persisted channel address into a Sink.
type Resolver interface {
	Resolve(channel string) (Sink, error)
}

// ChannelResolver understands "http://", "https://" (webhook) and "log:"
// channels. "fault:<n>:<channel>" wraps another channel in a FaultSink that
// fails its first n deliveries.
type ChannelResolver struct {
	log     zerolog.Logger
	timeout time.Duration
}

func NewChannelResolver(log zerolog.Logger, timeout time.Duration) *ChannelResolver {
	return &ChannelResolver{log: log, timeout: timeout}
}

func (r *ChannelResolver) Resolve(channel string) (Sink, error) {
	switch {
	case strings.HasPrefix(channel, "http://"), strings.HasPrefix(channel, "https://"):
		return NewWebhookSink(channel, r.timeout), nil
	case strings.HasPrefix(channel, "log:"):
		return NewLogSink(r.log, strings.TrimPrefix(channel, "log:")), nil
	case strings.HasPrefix(channel, "fault:"):
		n, inner, ok := strings.Cut(strings.TrimPrefix(channel, "fault:"), ":")
		if !ok {
			return nil, fmt.Errorf("fault channel %q has no inner channel", channel)
		}
		failures, err := strconv.Atoi(n)
		if err != nil || failures < 0 {
			return nil, fmt.Errorf("fault channel %q: bad failure count", channel)
		}
		next, err := r.Resolve(inner)
		if err != nil {
			return nil, err
		}
		return NewFaultSink(next, failures), nil
	default:
		return nil, fmt.Errorf("unsupported notification channel %q", channel)
	}
}
