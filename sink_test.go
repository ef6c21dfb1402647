package calltrace

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type countingObserver struct {
	nopObserver
	failures atomic.Int32
	changes  atomic.Int32
}

func (o *countingObserver) SinkFailed()                       { o.failures.Add(1) }
func (o *countingObserver) SinkBreakerChanged(string, string) { o.changes.Add(1) }

func TestRecovered(t *testing.T) {
	assert.NoError(t, recovered(func() {}))

	err := recovered(func() { panic("down") })
	assert.EqualError(t, err, "log sink panicked: down")
}

func TestSinkGuard_Emit(t *testing.T) {
	var got []string
	sink := SinkFunc(func(level zerolog.Level, template string, values ...any) {
		got = append(got, level.String()+" "+template)
	})
	g := newSinkGuard(sink, DefaultConfig(), zerolog.Nop(), nopObserver{})

	g.emit(zerolog.InfoLevel, msgClassMethod, "T", "M")
	assert.Equal(t, []string{"info " + msgClassMethod}, got)
}

func TestSinkGuard_DumpWithoutDumper(t *testing.T) {
	g := newSinkGuard(SinkFunc(func(zerolog.Level, string, ...any) {}), DefaultConfig(), zerolog.Nop(), nopObserver{})
	assert.False(t, g.dump(struct{}{}))
}

func TestSinkGuard_ReportsAreRateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SinkBreaker.Enabled = false
	cfg.FailureReportsPerSecond = 1

	var diag bytes.Buffer
	obs := &countingObserver{}
	g := newSinkGuard(SinkFunc(func(zerolog.Level, string, ...any) { panic("x") }), cfg, zerolog.New(&diag), obs)

	for i := 0; i < 10; i++ {
		g.emit(zerolog.InfoLevel, "m")
	}
	assert.Equal(t, int32(10), obs.failures.Load())
	assert.Equal(t, 1, bytes.Count(diag.Bytes(), []byte("Log sink failed")))
}

func TestSinkGuard_ReportsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SinkBreaker.Enabled = false
	cfg.FailureReportsPerSecond = 0

	var diag bytes.Buffer
	obs := &countingObserver{}
	g := newSinkGuard(SinkFunc(func(zerolog.Level, string, ...any) { panic("x") }), cfg, zerolog.New(&diag), obs)

	g.emit(zerolog.InfoLevel, "m")
	assert.Equal(t, int32(1), obs.failures.Load())
	assert.Empty(t, diag.String())
}

func TestSinkGuard_BreakerRecovers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SinkBreaker.FailureThreshold = 1
	cfg.SinkBreaker.OpenTimeout = 20 * time.Millisecond

	var healthy atomic.Bool
	var delivered atomic.Int32
	sink := SinkFunc(func(zerolog.Level, string, ...any) {
		if !healthy.Load() {
			panic("down")
		}
		delivered.Add(1)
	})
	obs := &countingObserver{}
	g := newSinkGuard(sink, cfg, zerolog.Nop(), obs)

	g.emit(zerolog.InfoLevel, "m")
	g.emit(zerolog.InfoLevel, "m")
	assert.Equal(t, int32(1), obs.failures.Load())

	healthy.Store(true)
	time.Sleep(40 * time.Millisecond)
	g.emit(zerolog.InfoLevel, "m")
	g.emit(zerolog.InfoLevel, "m")

	assert.Equal(t, int32(2), delivered.Load())
	// closed->open, open->half-open, half-open->closed
	assert.Equal(t, int32(3), obs.changes.Load())
}
