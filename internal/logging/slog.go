package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	name string

	mu          sync.RWMutex
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
	context     ContextProvider
}

// NewSlogManager creates a new slog-based logging manager. name identifies
// the bridge in OTel records.
func NewSlogManager(name string) *SlogManager {
	return &SlogManager{name: name}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetContext installs the provider whose attributes are added to every
// record. It applies to loggers built by later Setup calls.
func (m *SlogManager) SetContext(provider ContextProvider) {
	m.mu.Lock()
	m.context = provider
	m.mu.Unlock()
}

func (m *SlogManager) contextAttrs() []slog.Attr {
	m.mu.RLock()
	p := m.context
	m.mu.RUnlock()
	if p == nil {
		return nil
	}
	return p()
}

// Setup initializes logging. Records go to file when it is set and to
// stdout otherwise, and to OTel when provider is not nil.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	lvl := parseLevel(level)

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}
	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler(m.name, otelslog.WithLoggerProvider(provider)))
	}

	logger := slog.New(NewContextHandler(NewMultiHandler(handlers...), m.contextAttrs))

	m.mu.Lock()
	m.logger = logger
	m.logProvider = provider
	m.mu.Unlock()

	logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger, or the default one before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	m.mu.RLock()
	p := m.logProvider
	m.mu.RUnlock()
	if p != nil {
		return p.ForceFlush(ctx)
	}
	return nil
}
