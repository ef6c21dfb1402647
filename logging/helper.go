package logging

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// parseLevel parses a string log level into a zerolog.Level. An empty string
// means info.
func parseLevel(level string) (zerolog.Level, error) {
	if level == emptyString {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// DetailedError.Cause() is preferred over errors.Unwrap. Depth is bounded
// and a repeated message ends the walk.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	seen := map[string]bool{}

	for depth := 0; err != nil && depth < maxDepth; depth++ {
		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, emptyString)
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	return strings.Join(chain, " -> ")
}

// logEventBuilder creates a log event for the given level, or a no-op event
// when the service is not initialized or the level is disabled.
//
// The read lock is held from the initialized check until the event is counted
// in wg, so Close either sees the event counted or the event sees the service
// closed.
func logEventBuilder(s *Service, level zerolog.Level) LogEvent {
	if s == nil || !s.isInitialized.Load() || level == zerolog.NoLevel {
		return newLogEvent(nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isInitialized.Load() {
		return newLogEvent(nil)
	}
	logger := s.logger.Load()
	if logger == nil || logger.GetLevel() > level {
		return newLogEvent(nil)
	}

	event := logger.WithLevel(level)
	if event == nil {
		return newLogEvent(nil)
	}

	s.activeOps.Add(1)
	s.wg.Add(1)
	return newTrackedLogEvent(event, s)
}
