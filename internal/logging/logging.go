package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a configuration level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a text logger writing to console and, when filename is set, to a rotated log file.
// The returned function closes the log file.
func Setup(level, filename string, console io.Writer) (*slog.Logger, func() error, error) {
	writers := []io.Writer{console}
	closeFn := func() error { return nil }

	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, nil, errors.Wrapf(err, "unable to create log directory for %s", filename)
		}

		logWriter := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    25,
			MaxBackups: 10,
			MaxAge:     14,
			Compress:   true,
		}
		writers = append(writers, logWriter)
		closeFn = logWriter.Close
	}

	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(level)})
	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger, closeFn, nil
}
