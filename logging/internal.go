package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func (s *Service) initializeRollingFileLogger(exeName string) *lumberjack.Logger {
	if exeName == emptyString {
		exeName = defaultLogName
	}

	path := filepath.Join(s.WorkingDir, s.LoggingConfig.RelLogFileDir, exeName+".log")

	return &lumberjack.Logger{
		Filename:   path,
		MaxBackups: int(s.LoggingConfig.LogFileMaxBackups),
		MaxAge:     int(s.LoggingConfig.LogFileMaxAgeDays),
		MaxSize:    int(s.LoggingConfig.LogFileMaxSizeMB),
		Compress:   s.LoggingConfig.LogFileCompress,
	}
}

func (s *Service) initializeWriters(logfile string) []io.Writer {
	var writers []io.Writer

	// If both writers are disabled, enable the file writer
	if !s.LoggingConfig.ConsoleLogging && !s.LoggingConfig.FileLogging {
		s.LoggingConfig.FileLogging = true
	}
	if s.LoggingConfig.FileLogging {
		s.fileWriter = s.initializeRollingFileLogger(logfile)
		writers = append(writers, s.fileWriter)
	}
	if s.LoggingConfig.ConsoleLogging {
		console := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: s.LoggingConfig.ConsoleNoColor}
		if s.LoggingConfig.ConsoleTimeFormat != emptyString {
			console.TimeFormat = s.LoggingConfig.ConsoleTimeFormat
		}
		writers = append(writers, console)
	}

	return writers
}
