package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/qc-advancedmedic/nui/internal/bridge"
	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/dispatcher"
	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/internal/handlers"
	"github.com/qc-advancedmedic/nui/internal/influx"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/logging"
	"github.com/qc-advancedmedic/nui/internal/monitor"
	intOtel "github.com/qc-advancedmedic/nui/internal/otel"
	"github.com/qc-advancedmedic/nui/internal/state"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "medic_nui"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLog is used by the storage and metrics layers
	ZLog zerolog.Logger

	LogFilePath string
	LogFile     *os.File

	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()
)

// services
var (
	handlerService *handlers.Service
	bridgeServer   *bridge.Server
	monitorService *monitor.Service
	influxManager  *influx.Manager
	journalBackend journal.Backend
)

func setupLogging(configDir string) {
	SlogManager = logging.NewSlogManager(AppName)
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err == nil {
		Logger.Info("Loaded .env")
	}

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	level := viper.GetString("logLevel")
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	var err error
	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	LogFile, err = logging.OpenLogFile(LogFilePath)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	var logWriter io.Writer
	if LogFile != nil {
		logWriter = LogFile
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(otelCfg, logWriter)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint, "metrics", OTelProvider.MetricsEnabled())
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	SlogManager.SetContext(viewContext)
	SlogManager.Setup(logWriter, level, otelLogProvider)
	ZLog = logging.NewZerolog(logWriter, level)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath, "version", CurrentVersion, "buildDate", BuildDate)
}

// viewContext adds the current view and patient to every log record.
func viewContext() []slog.Attr {
	if handlerService == nil {
		return nil
	}
	app, _ := handlerService.Store().Get()
	attrs := []slog.Attr{slog.String("view", string(app.View))}
	if app.View == state.ViewInspection && app.Inspection.PlayerID != "" {
		attrs = append(attrs, slog.String("patient", string(app.Inspection.PlayerID)))
	}
	return attrs
}

func newGateway(cfg config.GatewayConfig) (gateway.Gateway, *gateway.Mock) {
	if strings.EqualFold(cfg.Mode, "mock") {
		Logger.Info("Using mock gateway", "successRate", cfg.Mock.SuccessRate, "delay", cfg.Mock.Delay)
		m := gateway.NewMock(cfg.Mock.SuccessRate, cfg.Mock.Delay, nil)
		return m, m
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gateway.ResourceURL(cfg.Resource)
	}
	Logger.Info("Using HTTP gateway", "url", baseURL)
	return gateway.New(baseURL, cfg.Timeout), nil
}

func startInflux(ctx context.Context) handlers.OutcomeWriter {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	influxManager = influx.NewManager(cfg, ZLog)
	if err := influxManager.Connect(ctx); err != nil {
		Logger.Error("Failed to connect to InfluxDB", "error", err)
		influxManager = nil
		return nil
	}
	return influxManager
}

func serve(ctx context.Context) error {
	backend, err := createJournalBackend(config.GetStorageConfig(), config.GetGatewayConfig().Resource)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}
	journalBackend = backend

	gw, mock := newGateway(config.GetGatewayConfig())

	deps := handlers.Dependencies{
		Gateway: gw,
		Journal: journalBackend,
		Logger:  Logger,
	}
	if w := startInflux(ctx); w != nil {
		deps.Outcomes = w
	}
	handlerService = handlers.NewService(deps)

	eventDispatcher, err := dispatcher.New(logging.NewZerologAdapter(ZLog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	handlerService.RegisterHandlers(eventDispatcher)
	Logger.Info("Handlers registered with dispatcher")

	if mock != nil && config.GetGatewayConfig().Mock.PushResponses {
		mock.OnPush(func(ctx context.Context, raw []byte) error {
			_, err := handlerService.HandlePush(ctx, raw)
			return err
		})
	}

	bridgeServer = bridge.New(bridge.Dependencies{
		Service: handlerService,
		Journal: journalBackend,
		Logger:  Logger,
		Config:  config.GetBridgeConfig(),
	})
	if err := bridgeServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}

	monitorService = monitor.NewService(monitor.Dependencies{
		Logger:     Logger,
		Store:      handlerService.Store(),
		Journal:    journalBackend,
		Clients:    bridgeServer.Hub().Clients,
		StatusPath: filepath.Join(viper.GetString("logsDir"), AppName+".status.json"),
		Interval:   viper.GetDuration("monitor.interval"),
	})
	if err := monitorService.Start(); err != nil {
		Logger.Warn("Failed to start status monitor", "error", err)
	}

	<-ctx.Done()
	return nil
}

func shutdown() {
	Logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if monitorService != nil {
		monitorService.Stop()
	}
	if bridgeServer != nil {
		if err := bridgeServer.Shutdown(ctx); err != nil {
			Logger.Error("Failed to stop bridge", "error", err)
		}
	}
	if handlerService != nil {
		handlerService.Close()
	}
	if journalBackend != nil {
		if err := journalBackend.Close(); err != nil {
			Logger.Error("Failed to close journal", "error", err)
		}
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB", "error", err)
		}
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintf(os.Stderr, "log flush failed: %v\n", err)
	}
	if LogFile != nil {
		LogFile.Close()
	}
}

func main() {
	configDir := os.Getenv("MEDIC_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	setupLogging(configDir)

	args := os.Args[1:]
	if len(args) > 0 && strings.ToLower(args[0]) != "serve" {
		if err := runCLI(context.Background(), args, os.Stdout); err != nil {
			Logger.Error("Command failed", "error", err)
			shutdown()
			os.Exit(1)
		}
		shutdown()
		return
	}

	Logger.Info("Starting up...")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx); err != nil {
		Logger.Error("Startup failed", "error", err)
		stop()
		shutdown()
		os.Exit(1)
	}
	shutdown()
}
