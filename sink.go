package calltrace

import (
	stderrs "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Sink receives the entries the engine decides to emit. Values are
// substituted into template the way fmt.Sprintf does.
type Sink interface {
	Emit(level zerolog.Level, template string, values ...any)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(level zerolog.Level, template string, values ...any)

func (f SinkFunc) Emit(level zerolog.Level, template string, values ...any) {
	f(level, template, values...)
}

// Dumper is implemented by sinks that can log the full structure of a value.
// It is used when the value format is "dump".
type Dumper interface {
	Dump(v any)
}

const sinkBreakerName = "calltrace-sink"

// sinkGuard makes emission best effort. A sink that panics is recovered, the
// failure is reported on the diagnostic logger at a bounded rate and counted
// by the observer, and the breaker stops calling a sink that keeps failing.
// The guard never touches the traced call itself.
type sinkGuard struct {
	sink     Sink
	breaker  *gobreaker.CircuitBreaker[struct{}]
	reports  *rate.Limiter
	diag     zerolog.Logger
	observer Observer
}

func newSinkGuard(sink Sink, cfg Config, diag zerolog.Logger, observer Observer) *sinkGuard {
	g := &sinkGuard{sink: sink, diag: diag, observer: observer}

	if cfg.FailureReportsPerSecond > 0 {
		g.reports = rate.NewLimiter(rate.Limit(cfg.FailureReportsPerSecond), 1)
	}

	if cfg.SinkBreaker.Enabled {
		threshold := cfg.SinkBreaker.FailureThreshold
		g.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        sinkBreakerName,
			MaxRequests: 1,
			Timeout:     cfg.SinkBreaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				g.diag.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Log sink breaker state changed")
				g.observer.SinkBreakerChanged(from.String(), to.String())
			},
		})
	}
	return g
}

func (g *sinkGuard) emit(level zerolog.Level, template string, values ...any) {
	g.run(func() { g.sink.Emit(level, template, values...) })
}

// dump forwards v to the sink's Dumper. It returns false when the sink has
// none.
func (g *sinkGuard) dump(v any) bool {
	dumper, ok := g.sink.(Dumper)
	if !ok {
		return false
	}
	g.run(func() { dumper.Dump(v) })
	return true
}

func (g *sinkGuard) run(fn func()) {
	if g.breaker == nil {
		if err := recovered(fn); err != nil {
			g.failed(err)
		}
		return
	}

	_, err := g.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, recovered(fn)
	})
	if err == nil {
		return
	}
	// Rejections while open are the breaker doing its job.
	if stderrs.Is(err, gobreaker.ErrOpenState) || stderrs.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	g.failed(err)
}

func (g *sinkGuard) failed(err error) {
	g.observer.SinkFailed()
	if g.reports == nil || !g.reports.Allow() {
		return
	}
	g.diag.Error().Err(err).Time("at", time.Now()).Msg("Log sink failed; traced call unaffected")
}

func recovered(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("log sink panicked: %v", r)
		}
	}()
	fn()
	return nil
}
