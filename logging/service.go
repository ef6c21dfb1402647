package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Station-Manager/config"
	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/types"
	"github.com/Station-Manager/utils"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service is the zerolog-backed log sink. It implements calltrace.Sink and
// calltrace.Dumper, and offers structured logging through Logger.
//
// LoggingConfig is used when set; otherwise it is taken from ConfigService.
type Service struct {
	WorkingDir    string          `di.inject:"WorkingDir"`
	ConfigService *config.Service `di.inject:"config"`
	LoggingConfig *types.LoggingConfig

	logger        atomic.Pointer[zerolog.Logger]
	isInitialized atomic.Bool
	activeOps     atomic.Int64
	fileWriter    *lumberjack.Logger

	// mu orders event creation against Close; wg counts events created but
	// not yet sent.
	mu sync.RWMutex
	wg sync.WaitGroup
}

func NewService() *Service {
	return &Service{}
}

// Initialize builds the logger. Calling it again on an initialized service is
// a no-op.
func (s *Service) Initialize() error {
	const op errors.Op = "logging.Service.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized.Load() {
		return nil
	}

	if s.LoggingConfig == nil {
		if s.ConfigService == nil {
			return errors.New(op).Msg(errMsgAppCfgNotSet)
		}
		cfg := s.ConfigService.AppConfig.LoggingConfig
		s.LoggingConfig = &cfg
	}

	if err := validateConfig(s.LoggingConfig); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	level, err := parseLevel(s.LoggingConfig.Level)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgInvalidLevel)
	}

	if s.LoggingConfig.FileLogging || !s.LoggingConfig.ConsoleLogging {
		if s.WorkingDir == emptyString {
			return errors.New(op).Msg(errMsgWorkingDirNotSet)
		}
		dir := filepath.Join(s.WorkingDir, s.LoggingConfig.RelLogFileDir)
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(op).Err(err).Msg(errMsgLogDir)
		}
	}

	exeName, err := utils.ExecName(true)
	if err != nil {
		exeName = defaultLogName
	}

	logger := zerolog.New(io.MultiWriter(s.initializeWriters(exeName)...)).Level(level)
	if s.LoggingConfig.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}
	if s.LoggingConfig.SkipFrameCount > 0 {
		logger = logger.With().CallerWithSkipFrameCount(int(s.LoggingConfig.SkipFrameCount)).Logger()
	}

	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return nil
}

// Close stops accepting events, waits for in-flight events up to the
// configured shutdown timeout and closes the log file. It is safe to call
// more than once and on a nil or uninitialized service.
func (s *Service) Close() error {
	const op errors.Op = "logging.Service.Close"
	if s == nil {
		return nil
	}

	s.mu.Lock()
	if !s.isInitialized.Load() {
		s.mu.Unlock()
		return nil
	}
	s.isInitialized.Store(false)
	cfg := s.LoggingConfig
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout(cfg)):
		if cfg != nil && cfg.ShutdownTimeoutWarning {
			if logger := s.logger.Load(); logger != nil {
				logger.Warn().Int64("active_operations", s.activeOps.Load()).Msg("Logger shutdown timeout exceeded")
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Store(nil)
	if s.fileWriter != nil {
		err := s.fileWriter.Close()
		s.fileWriter = nil
		if err != nil {
			return errors.New(op).Err(err).Msg(errMsgCloseFile)
		}
	}
	return nil
}

func shutdownTimeout(cfg *types.LoggingConfig) time.Duration {
	if cfg == nil || cfg.ShutdownTimeoutMS <= 0 {
		return defaultShutdownTimeout
	}
	return time.Duration(cfg.ShutdownTimeoutMS) * time.Millisecond
}

// Emit implements calltrace.Sink. The template is formatted like fmt.Sprintf.
func (s *Service) Emit(level zerolog.Level, template string, values ...any) {
	logEventBuilder(s, level).Msgf(template, values...)
}

// TraceWith returns a LogEvent for structured Trace-level logging.
func (s *Service) TraceWith() LogEvent { return logEventBuilder(s, zerolog.TraceLevel) }

// DebugWith returns a LogEvent for structured Debug-level logging.
func (s *Service) DebugWith() LogEvent { return logEventBuilder(s, zerolog.DebugLevel) }

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: svc.InfoWith().Str("key", key).Msg("Object registered")
func (s *Service) InfoWith() LogEvent { return logEventBuilder(s, zerolog.InfoLevel) }

// WarnWith returns a LogEvent for structured Warn-level logging.
func (s *Service) WarnWith() LogEvent { return logEventBuilder(s, zerolog.WarnLevel) }

// ErrorWith returns a LogEvent for structured Error-level logging.
// Err() on the event adds the full error chain.
func (s *Service) ErrorWith() LogEvent { return logEventBuilder(s, zerolog.ErrorLevel) }

// With returns a LogContext for creating a child logger with pre-populated fields.
// Example: engineLog := svc.With().Str("component", "calltrace").Logger()
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	logger := s.logger.Load()
	if !s.isInitialized.Load() || logger == nil {
		return &noopLogContext{}
	}
	return &logContext{context: logger.With(), service: s}
}

// Zerolog returns a copy of the underlying logger for libraries that take a
// zerolog.Logger, such as the calltrace engine's diagnostics. It returns a
// disabled logger before Initialize.
func (s *Service) Zerolog() zerolog.Logger {
	if s == nil || !s.isInitialized.Load() {
		return zerolog.Nop()
	}
	logger := s.logger.Load()
	if logger == nil {
		return zerolog.Nop()
	}
	return *logger
}
