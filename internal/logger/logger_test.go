package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	log := New(false, &buf)
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Info().Str("isbn", "9780131495050").Msg("visible")
	assert.Contains(t, buf.String(), `"isbn":"9780131495050"`)
	assert.Contains(t, buf.String(), `"message":"visible"`)

	buf.Reset()
	debugLog := New(true, &buf)
	debugLog.Debug().Msg("shown")
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestSetGet(t *testing.T) {
	prev := Get()
	t.Cleanup(func() { Set(prev) })

	var buf bytes.Buffer
	Set(New(false, &buf))
	global := Get()
	global.Info().Msg("global")

	assert.Contains(t, buf.String(), "global")
}
