// Package logging is the zerolog-backed log sink for calltrace, with a
// structured-first API, safe lifecycle management, and file rotation.
//
// Key features
//   - Service implements calltrace.Sink (Emit) and calltrace.Dumper (Dump)
//   - Structured logging via InfoWith/DebugWith/... and context loggers via
//     With(); context loggers are sinks too, so traced calls can carry
//     per-component fields
//   - Graceful shutdown that waits for in-flight logs (bounded timeout)
//   - File rotation via lumberjack and configurable console formatting
//   - Error history enrichment: Err/AnErr add the error chain (outermost ->
//     root), the root cause, a joined history and the Station-Manager
//     DetailedError operations chain when available
//
// Typical usage
//
//	svc := &logging.Service{WorkingDir: wd, ConfigService: cfg}
//	if err := svc.Initialize(); err != nil { return err }
//	defer svc.Close()
//
//	engine, err := calltrace.New(calltrace.DefaultConfig(), markers, svc,
//		calltrace.WithDiagnostics(svc.Zerolog()))
package logging
