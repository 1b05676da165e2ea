package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/easyops/studybuddy-go/pkg/core/config"
)

// Provider 可观测性提供者
//
// 管理追踪与指标的生命周期。禁用时一切接口都是空实现，
// 调用方无需判空。
type Provider struct {
	tracer   Tracer
	metrics  Metrics
	shutdown []func(context.Context) error
	mu       sync.RWMutex
}

// NewProvider 创建可观测性提供者
func NewProvider(ctx context.Context, cfg config.ObservabilityConfig) (*Provider, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	p := &Provider{
		tracer:  NewNoopTracer(),
		metrics: NewNoopMetrics(),
	}

	if !cfg.Enabled {
		return p, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "studybuddy"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	if err := p.initTracing(ctx, cfg, serviceName, res); err != nil {
		return nil, err
	}
	if err := p.initMetrics(ctx, cfg, res); err != nil {
		return nil, err
	}

	return p, nil
}

// validate 校验可观测性配置
func validate(cfg config.ObservabilityConfig) error {
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	return nil
}

// initTracing 初始化追踪
func (p *Provider) initTracing(ctx context.Context, cfg config.ObservabilityConfig,
	serviceName string, res *resource.Resource) error {

	if cfg.TracerEndpoint == "" {
		return nil
	}

	exporterCfg := DefaultExporterConfig()
	exporterCfg.Endpoint = cfg.TracerEndpoint

	exporter, err := NewTraceExporter(ctx, exporterCfg)
	if err != nil {
		return err
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.shutdown = append(p.shutdown, tp.Shutdown)
	p.tracer = NewTracer(tp.Tracer(serviceName))

	return nil
}

// initMetrics 初始化指标
func (p *Provider) initMetrics(ctx context.Context, cfg config.ObservabilityConfig,
	res *resource.Resource) error {

	if cfg.MetricsEndpoint == "" {
		p.metrics = NewInMemoryMetrics()
		return nil
	}

	exporterCfg := DefaultExporterConfig()
	exporterCfg.Endpoint = cfg.MetricsEndpoint

	exporter, err := NewMetricExporter(ctx, exporterCfg)
	if err != nil {
		return err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(60*time.Second))),
	)

	p.shutdown = append(p.shutdown, mp.Shutdown)
	p.metrics = NewOTelMetrics(mp.Meter("studybuddy"))

	return nil
}

// Tracer 返回追踪器
func (p *Provider) Tracer() Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Metrics 返回指标收集器
func (p *Provider) Metrics() Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

// Shutdown 优雅关闭
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
