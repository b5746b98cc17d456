package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog creates the structured logger used by the storage and metrics
// layers. Records go to stdout as console lines and, when file is set, to
// file as JSON.
func NewZerolog(file io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: osStdout, TimeFormat: time.RFC3339}
	var w io.Writer = console
	if file != nil {
		w = zerolog.MultiLevelWriter(console, file)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ZerologAdapter exposes a zerolog logger through key/value logging
// interfaces such as dispatcher.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *ZerologAdapter) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *ZerologAdapter) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Warn logs a warning with optional key-value pairs.
func (l *ZerologAdapter) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs. An error value
// is rendered with its message.
func (l *ZerologAdapter) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields converts key-value pairs to a map for zerolog. Non-string keys
// and a trailing key without a value are dropped.
func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			fields[key] = v.Error()
		case time.Duration:
			fields[key] = v.String()
		default:
			fields[key] = v
		}
	}
	return fields
}

var osStdout io.Writer = os.Stdout
