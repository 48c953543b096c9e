package logging

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
}

func TestActivityLog_RecordsInfoAndAbove(t *testing.T) {
	act := NewActivityLog(10)
	act.now = fixedClock()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(act)

	logger.Debug().Msg("debug is skipped")
	logger.Info().Msg("created tab")
	logger.Warn().Msg("sidecar missing")

	entries := act.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "[2024-01-15 10:30:00] created tab", entries[0])
	assert.Equal(t, "[2024-01-15 10:30:00] sidecar missing", entries[1])
}

func TestActivityLog_DropsOldest(t *testing.T) {
	act := NewActivityLog(3)
	act.now = fixedClock()

	for i := 0; i < 5; i++ {
		act.Add(fmt.Sprintf("entry %d", i))
	}

	entries := act.Entries()
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0], "entry 2")
	assert.Contains(t, entries[2], "entry 4")
}

func TestActivityLog_DefaultCapacity(t *testing.T) {
	act := NewActivityLog(0)
	for i := 0; i < DefaultActivityCapacity+20; i++ {
		act.Add("x")
	}
	assert.Len(t, act.Entries(), DefaultActivityCapacity)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	closer()
}

func TestNew_WritesToFile(t *testing.T) {
	path := t.TempDir() + "/logs/inkpad.log"

	logger, closer, err := New("info", path)
	require.NoError(t, err)
	logger.Info().Msg("hello")
	closer()

	assert.FileExists(t, path)
}
