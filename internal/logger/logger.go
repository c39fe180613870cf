// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	global = New(false, os.Stdout)
)

// New builds a JSON logger writing to w. Debug enables debug level records.
func New(debug bool, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Get returns the process-wide logger.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Set replaces the process-wide logger.
func Set(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}
