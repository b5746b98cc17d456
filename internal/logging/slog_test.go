package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

var fixedTime = time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := osStdout
	osStdout = &buf
	t.Cleanup(func() { osStdout = orig })
	return &buf
}

func TestSetup_FileOnly_NoStdout(t *testing.T) {
	stdout := captureStdout(t)

	var fileBuf bytes.Buffer
	m := NewSlogManager("medic-nui")
	m.Setup(&fileBuf, "info", nil)
	m.Logger().Info("hello file")

	assert.Contains(t, fileBuf.String(), "hello file")
	assert.Contains(t, fileBuf.String(), "Logging initialized")
	assert.Empty(t, stdout.String())
}

func TestSetup_NoFile_WritesToStdout(t *testing.T) {
	stdout := captureStdout(t)

	m := NewSlogManager("medic-nui")
	m.Setup(nil, "info", nil)
	m.Logger().Info("hello console")

	assert.Contains(t, stdout.String(), "hello console")
}

func TestSetup_Levels(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer

	debug := NewSlogManager("medic-nui")
	debug.Setup(&debugBuf, "debug", nil)
	debug.Logger().Debug("debug msg")

	info := NewSlogManager("medic-nui")
	info.Setup(&infoBuf, "info", nil)
	info.Logger().Debug("should be filtered")
	info.Logger().Info("should appear")

	assert.Contains(t, debugBuf.String(), "debug msg")
	assert.NotContains(t, infoBuf.String(), "should be filtered")
	assert.Contains(t, infoBuf.String(), "should appear")
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager("medic-nui")

	m.Setup(&buf1, "info", nil)
	m.Logger().Info("first")

	m.Setup(&buf2, "info", nil)
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second")
	assert.Contains(t, buf2.String(), "second")
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager("medic-nui")
	view := "hidden"
	m.SetContext(func() []slog.Attr { return []slog.Attr{slog.String("view", view)} })
	m.Setup(&buf, "info", nil)

	view = "inspection-panel"
	ctx := WithAttrs(context.Background(), slog.String("action", "inspection/inspect"))
	m.Logger().InfoContext(ctx, "handled")

	assert.Contains(t, buf.String(), "view=inspection-panel")
	assert.Contains(t, buf.String(), "action=inspection/inspect")
}

func TestWithAttrs_Accumulates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), nil))

	ctx := WithAttrs(context.Background(), slog.String("patient", "7"))
	ctx = WithAttrs(ctx, slog.String("bodyPart", "larm"))
	logger.InfoContext(ctx, "treated")

	assert.Contains(t, buf.String(), "patient=7")
	assert.Contains(t, buf.String(), "bodyPart=larm")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager("medic-nui").Logger())
}

func TestFlush(t *testing.T) {
	m := NewSlogManager("medic-nui")
	assert.NoError(t, m.Flush(context.Background()))

	var buf bytes.Buffer
	m.Setup(&buf, "info", sdklog.NewLoggerProvider())
	m.Logger().Info("otel integrated")
	assert.Contains(t, buf.String(), "otel integrated")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	multi := NewMultiHandler(
		slog.NewTextHandler(&buf1, nil),
		nil,
		slog.NewTextHandler(&buf2, nil),
	)
	require.Len(t, multi.handlers, 2)

	slog.New(multi).Info("fanned out")
	assert.Contains(t, buf1.String(), "fanned out")
	assert.Contains(t, buf2.String(), "fanned out")
}

func TestMultiHandler_Enabled(t *testing.T) {
	infoHandler := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	assert.False(t, NewMultiHandler(infoHandler).Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, NewMultiHandler(infoHandler, debugHandler).Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(slog.NewTextHandler(&buf, nil))

	slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "bridge")})).Info("with attrs")
	slog.New(multi.WithGroup("hold")).Info("grouped", "kind", "vitals")

	assert.Contains(t, buf.String(), "component=bridge")
	assert.Contains(t, buf.String(), "hold.kind=vitals")
	assert.Equal(t, multi, multi.WithGroup(""))
}

type errorHandler struct {
	slog.Handler
}

func (h *errorHandler) Handle(_ context.Context, _ slog.Record) error {
	return errors.New("handler error")
}

func (h *errorHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func TestMultiHandler_HandleError(t *testing.T) {
	var buf bytes.Buffer
	spy := slog.NewTextHandler(&buf, nil)

	multi := NewMultiHandler(&errorHandler{}, spy)
	slog.New(multi).Info("should reach spy")
	assert.Contains(t, buf.String(), "should reach spy")

	r := slog.NewRecord(fixedTime, slog.LevelInfo, "direct", 0)
	assert.EqualError(t, multi.Handle(context.Background(), r), "handler error")
}
