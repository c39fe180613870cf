// internal/notify/log.go
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink "delivers" a message by writing it to a logger. Useful for local
// runs where no real channel exists. It never fails.
type LogSink struct {
	log     zerolog.Logger
	channel string
}

func NewLogSink(log zerolog.Logger, channel string) *LogSink {
	return &LogSink{log: log, channel: channel}
}

func (s *LogSink) Send(_ context.Context, message string) error {
	s.log.Info().Str("channel", s.channel).Str("text", message).Msg("notification delivered")
	return nil
}
