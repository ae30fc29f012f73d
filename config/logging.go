package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "deal-api.log")
}

// InitLogging prepares the log file and returns the service logger. The
// returned file is nil when the log file could not be opened.
func InitLogging(level, service string) (*os.File, zerolog.Logger) {
	zerolog.TimeFieldFormat = time.RFC3339

	var logFile *os.File
	if err := os.MkdirAll(filepath.Dir(LogFilePath()), os.ModePerm); err == nil {
		f, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			logFile = f
			LogWriter = io.MultiWriter(os.Stdout, f)
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(LogWriter).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	if logFile == nil {
		logger.Warn().Str("path", LogFilePath()).Msg("log file unavailable, logging to stdout only")
	}
	return logFile, logger
}
