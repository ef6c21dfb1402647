package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Chained field methods must keep the event's in-flight slot so that the
// final Msg releases it.
func TestChainedEventsReleaseSlot(t *testing.T) {
	var buf bytes.Buffer
	service := newBufferService(&buf, zerolog.DebugLevel)

	service.InfoWith().Str("k", "v").Int("n", 1).Msg("chained")
	service.ErrorWith().Err(assert.AnError).Str("k", "v").Send()
	service.With().Str("c", "x").Logger().DebugWith().Bool("b", true).Msgf("%d", 1)

	assert.Equal(t, int64(0), service.activeOps.Load())

	done := make(chan error, 1)
	go func() { done <- service.Close() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Close() took too long - WaitGroup may be unbalanced")
	}
}

func TestTrackedEventWithNilEventHoldsNoSlot(t *testing.T) {
	var buf bytes.Buffer
	service := newBufferService(&buf, zerolog.DebugLevel)

	event := newTrackedLogEvent(nil, service)
	require.NotNil(t, event)
	event.Msg("dropped")

	assert.Empty(t, buf.String())
	assert.Equal(t, int64(0), service.activeOps.Load())
}

func TestEventHoldsSlotUntilWritten(t *testing.T) {
	var buf bytes.Buffer
	service := newBufferService(&buf, zerolog.DebugLevel)

	event := service.InfoWith()
	assert.Equal(t, int64(1), service.activeOps.Load())
	event.Msg("first")
	assert.Equal(t, int64(0), service.activeOps.Load())
}
