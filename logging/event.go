package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext builds a child logger with fields included in every entry it
// writes.
type LogContext interface {
	Str(key, val string) LogContext
	Int(key string, val int) LogContext
	Bool(key string, val bool) LogContext
	Interface(key string, val any) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent is a single structured entry under construction. Nothing is
// written until Msg, Msgf or Send.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Bool(key string, val bool) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Time(key string, val time.Time) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Interface(key string, val any) LogEvent
	Msg(msg string)
	Msgf(format string, v ...any)
	Send()
}

// logEvent implements LogEvent by wrapping zerolog.Event. A nil event makes
// every method a no-op. When service is set the event holds a slot in the
// service's in-flight count, released once the event is written.
type logEvent struct {
	event   *zerolog.Event
	service *Service
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func newTrackedLogEvent(e *zerolog.Event, s *Service) LogEvent {
	if e == nil || s == nil {
		return &logEvent{event: nil}
	}
	return &logEvent{event: e, service: s}
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Err(err error) LogEvent {
	return e.AnErr(zerolog.ErrorFieldName, err)
}

// AnErr adds err under key plus the enrichment fields key_chain, key_root,
// key_history, key_ops and, when known, key_root_op.
func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event == nil {
		return e
	}
	e.event.AnErr(key, err)
	if err == nil {
		return e
	}
	chain, ops, root, rootOp := buildErrorChain(err)
	if len(chain) > 0 {
		e.event.Strs(key+"_chain", chain)
		e.event.Str(key+"_root", root)
		e.event.Str(key+"_history", joinChain(chain))
		e.event.Strs(key+"_ops", ops)
		if rootOp != emptyString {
			e.event.Str(key+"_root_op", rootOp)
		}
	}
	return e
}

func (e *logEvent) Interface(key string, val any) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	defer e.done()
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...any) {
	defer e.done()
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	defer e.done()
	if e.event != nil {
		e.event.Send()
	}
}

func (e *logEvent) done() {
	if e.service == nil {
		return
	}
	e.service.activeOps.Add(-1)
	e.service.wg.Done()
	e.service = nil
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	service *Service
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Interface(key string, val any) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	return &contextLogger{logger: &logger, parent: c.service}
}

// contextLogger writes through its own zerolog.Logger but leaves lifecycle
// and in-flight accounting to the parent Service.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Service
}

func (cl *contextLogger) event(level zerolog.Level) LogEvent {
	s := cl.parent
	if cl.logger == nil || s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isInitialized.Load() || cl.logger.GetLevel() > level {
		return newLogEvent(nil)
	}
	event := cl.logger.WithLevel(level)
	if event == nil {
		return newLogEvent(nil)
	}

	s.activeOps.Add(1)
	s.wg.Add(1)
	return newTrackedLogEvent(event, s)
}

func (cl *contextLogger) TraceWith() LogEvent { return cl.event(zerolog.TraceLevel) }
func (cl *contextLogger) DebugWith() LogEvent { return cl.event(zerolog.DebugLevel) }
func (cl *contextLogger) InfoWith() LogEvent  { return cl.event(zerolog.InfoLevel) }
func (cl *contextLogger) WarnWith() LogEvent  { return cl.event(zerolog.WarnLevel) }
func (cl *contextLogger) ErrorWith() LogEvent { return cl.event(zerolog.ErrorLevel) }

func (cl *contextLogger) With() LogContext {
	s := cl.parent
	if cl.logger == nil || s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}
	return &logContext{context: cl.logger.With(), service: s}
}

// Emit lets a context logger serve as a calltrace.Sink, so every traced call
// carries the context fields.
func (cl *contextLogger) Emit(level zerolog.Level, template string, values ...any) {
	cl.event(level).Msgf(template, values...)
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(string, string) LogContext    { return n }
func (n *noopLogContext) Int(string, int) LogContext       { return n }
func (n *noopLogContext) Bool(string, bool) LogContext     { return n }
func (n *noopLogContext) Interface(string, any) LogContext { return n }
func (n *noopLogContext) Logger() Logger                   { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) TraceWith() LogEvent                { return newLogEvent(nil) }
func (n *noopLogger) DebugWith() LogEvent                { return newLogEvent(nil) }
func (n *noopLogger) InfoWith() LogEvent                 { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent                 { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent                { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext                   { return &noopLogContext{} }
func (n *noopLogger) Emit(zerolog.Level, string, ...any) {}
