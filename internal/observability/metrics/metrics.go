package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	documentsCreated   metric.Int64Counter
	documentsSubmitted metric.Int64Counter
	creditDenied       metric.Int64Counter
	notificationsPush  metric.Int64Counter
	exchangeFallback   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "quipu"
	}
	meter := provider.Meter(name)

	documentsCreated, err := meter.Int64Counter("quipu_documents_created_total")
	if err != nil {
		return nil, err
	}
	documentsSubmitted, err := meter.Int64Counter("quipu_documents_submitted_total")
	if err != nil {
		return nil, err
	}
	creditDenied, err := meter.Int64Counter("quipu_credit_denied_total")
	if err != nil {
		return nil, err
	}
	notificationsPush, err := meter.Int64Counter("quipu_notifications_pushed_total")
	if err != nil {
		return nil, err
	}
	exchangeFallback, err := meter.Int64Counter("quipu_exchange_fallback_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("quipu_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documentsCreated:   documentsCreated,
		documentsSubmitted: documentsSubmitted,
		creditDenied:       creditDenied,
		notificationsPush:  notificationsPush,
		exchangeFallback:   exchangeFallback,
		rateLimitDenied:    rateLimitDenied,
	}, nil
}

// RecordDocumentCreated increments document creation counts.
func (m *Metrics) RecordDocumentCreated(ctx context.Context, docType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("doc_type", strings.TrimSpace(docType)))
	m.documentsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDocumentSubmitted increments document submission counts.
func (m *Metrics) RecordDocumentSubmitted(ctx context.Context, docType, currency string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("doc_type", strings.TrimSpace(docType)),
		attribute.String("currency", strings.TrimSpace(currency)),
	)
	m.documentsSubmitted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCreditDenied increments failed credit check counts.
func (m *Metrics) RecordCreditDenied(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("currency", strings.TrimSpace(currency)))
	m.creditDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordNotificationPushed increments websocket push counts.
func (m *Metrics) RecordNotificationPushed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.notificationsPush.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExchangeFallback increments fallback-rate usage counts.
func (m *Metrics) RecordExchangeFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.exchangeFallback.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"doc_type":    {},
	"currency":    {},
	"kind":        {},
	"endpoint":    {},
	"status_code": {},
	"method":      {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
