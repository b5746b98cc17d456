// Package otel sets up the OpenTelemetry log and metric pipelines of the
// bridge.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/qc-advancedmedic/nui/internal/config"
)

// Provider owns the log provider fed by the slog bridge and, when an OTLP
// endpoint is set, the meter provider behind the dispatcher metrics.
type Provider struct {
	cfg    config.OTelConfig
	logs   *sdklog.LoggerProvider
	meters *sdkmetric.MeterProvider
}

// New creates a provider. Logs go to logWriter and, with an endpoint, over
// OTLP along with metrics. A disabled config yields a no-op provider.
func New(cfg config.OTelConfig, logWriter io.Writer) (*Provider, error) {
	p := &Provider{cfg: cfg}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	processors, err := logProcessors(cfg, logWriter)
	if err != nil {
		return nil, err
	}
	if len(processors) == 0 {
		return nil, errors.New("otel enabled but neither a log writer nor an endpoint is configured")
	}
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, proc := range processors {
		opts = append(opts, sdklog.WithProcessor(proc))
	}
	p.logs = sdklog.NewLoggerProvider(opts...)

	if cfg.Endpoint != "" {
		if p.meters, err = meterProvider(cfg, res); err != nil {
			_ = p.logs.Shutdown(context.Background())
			return nil, err
		}
		otel.SetMeterProvider(p.meters)
	}
	return p, nil
}

func logProcessors(cfg config.OTelConfig, logWriter io.Writer) ([]sdklog.Processor, error) {
	var out []sdklog.Processor
	batch := func(e sdklog.Exporter) sdklog.Processor {
		return sdklog.NewBatchProcessor(e, sdklog.WithExportTimeout(cfg.BatchTimeout))
	}

	if logWriter != nil {
		exp, err := stdoutlog.New(stdoutlog.WithWriter(logWriter), stdoutlog.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		out = append(out, batch(exp))
	}

	if cfg.Endpoint != "" {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		out = append(out, batch(exp))
	}
	return out, nil
}

func meterProvider(cfg config.OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
	), nil
}

// LoggerProvider returns the log provider for the otelslog bridge, or nil
// when OTel is disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Meter returns a meter from the bridge's meter provider, or from the
// global one when no endpoint is configured.
func (p *Provider) Meter(name string) metric.Meter {
	if p.meters != nil {
		return p.meters.Meter(name)
	}
	return otel.GetMeterProvider().Meter(name)
}

// Flush exports pending logs and metrics.
func (p *Provider) Flush(ctx context.Context) error {
	var errs []error
	if p.logs != nil {
		if err := p.logs.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log flush failed: %w", err))
		}
	}
	if p.meters != nil {
		if err := p.meters.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric flush failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("log shutdown failed: %w", err))
		}
	}
	if p.meters != nil {
		if err := p.meters.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric shutdown failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Enabled reports whether OTel is enabled.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled
}

// MetricsEnabled reports whether metrics are exported.
func (p *Provider) MetricsEnabled() bool {
	return p.meters != nil
}
