package logging

import (
	"github.com/Station-Manager/calltrace"
	"github.com/rs/zerolog"
)

// Logger is the structured logging surface of the Service and of the context
// loggers it creates. Every Logger is also a calltrace.Sink.
type Logger interface {
	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent

	// With for context logger creation
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext

	Emit(level zerolog.Level, template string, values ...any)
}

var (
	_ Logger           = (*Service)(nil)
	_ calltrace.Sink   = (*Service)(nil)
	_ calltrace.Dumper = (*Service)(nil)
	_ calltrace.Sink   = Logger(nil)
)
