package otel

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 基于 OpenTelemetry Meter 的指标实现
//
// 仪器按名称懒创建并缓存；创建失败的仪器退化为空实现，
// 业务路径不因指标问题报错。
type OTelMetrics struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]Counter
	histograms map[string]Histogram
}

// NewOTelMetrics 创建 Meter 指标实现
func NewOTelMetrics(meter metric.Meter) *OTelMetrics {
	return &OTelMetrics{
		meter:      meter,
		counters:   make(map[string]Counter),
		histograms: make(map[string]Histogram),
	}
}

// Counter 返回或创建计数器
func (m *OTelMetrics) Counter(name string) Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}

	instrument, err := m.meter.Int64Counter(name)
	if err != nil {
		m.counters[name] = &NoopCounter{}
		return m.counters[name]
	}

	c := &otelCounter{instrument: instrument}
	m.counters[name] = c
	return c
}

// Histogram 返回或创建直方图
func (m *OTelMetrics) Histogram(name string) Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}

	instrument, err := m.meter.Float64Histogram(name)
	if err != nil {
		m.histograms[name] = &NoopHistogram{}
		return m.histograms[name]
	}

	h := &otelHistogram{instrument: instrument}
	m.histograms[name] = h
	return h
}

// otelCounter Meter 计数器
type otelCounter struct {
	instrument metric.Int64Counter
}

// Add 增加计数
func (c *otelCounter) Add(ctx context.Context, value int64, attrs ...Attr) {
	c.instrument.Add(ctx, value, metric.WithAttributes(convertAttrs(attrs)...))
}

// otelHistogram Meter 直方图
type otelHistogram struct {
	instrument metric.Float64Histogram
}

// Record 记录值
func (h *otelHistogram) Record(ctx context.Context, value float64, attrs ...Attr) {
	h.instrument.Record(ctx, value, metric.WithAttributes(convertAttrs(attrs)...))
}

// convertAttrs 将通用属性转换为 OpenTelemetry 属性
func convertAttrs(attrs []Attr) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		case float64:
			out = append(out, attribute.Float64(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		default:
			out = append(out, attribute.String(a.Key, fmt.Sprintf("%v", v)))
		}
	}
	return out
}

// compile-time interface check
var _ Metrics = (*OTelMetrics)(nil)
