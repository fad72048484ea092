package metrics

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	rewards "github.com/linkedpost/go-rewards"
	"github.com/linkedpost/go-rewards/common"
	"github.com/linkedpost/go-rewards/models"
)

// OtelMetricService exports counters, gauges and distributions over OTLP.
// Without a configured endpoint it falls back to the stdout exporter.
type OtelMetricService struct {
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	counters      map[models.MetricName]metric.Int64Counter
	histograms    map[models.MetricName]metric.Int64Histogram
	gauges        map[models.MetricName]metric.Int64ObservableGauge
	instrumentMu  sync.Mutex
	logger        models.Logger
}

func NewMetricService(ctx context.Context, logger models.Logger) (*OtelMetricService, error) {
	var exporter sdkmetric.Exporter
	var err error
	if endpoint := os.Getenv(rewards.Env_MetricsEndpoint); len(endpoint) > 0 {
		exporter, err = otlpmetrichttp.New(ctx)
	} else {
		exporter, err = stdoutmetric.New()
	}
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(common.ServiceName),
		semconv.DeploymentEnvironment(os.Getenv(rewards.Env_Env)),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	return &OtelMetricService{
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(models.MetricsCallerName),
		counters:      make(map[models.MetricName]metric.Int64Counter),
		histograms:    make(map[models.MetricName]metric.Int64Histogram),
		gauges:        make(map[models.MetricName]metric.Int64ObservableGauge),
		logger:        logger,
	}, nil
}

func (o *OtelMetricService) Count(ctx context.Context, name models.MetricName, val int) error {
	o.instrumentMu.Lock()
	counter, found := o.counters[name]
	if !found {
		var err error
		if counter, err = o.meter.Int64Counter(string(name)); err != nil {
			o.instrumentMu.Unlock()
			return err
		}
		o.counters[name] = counter
	}
	o.instrumentMu.Unlock()

	counter.Add(ctx, int64(val))
	return nil
}

func (o *OtelMetricService) Distribution(ctx context.Context, name models.MetricName, val int) error {
	o.instrumentMu.Lock()
	histogram, found := o.histograms[name]
	if !found {
		var err error
		if histogram, err = o.meter.Int64Histogram(string(name)); err != nil {
			o.instrumentMu.Unlock()
			return err
		}
		o.histograms[name] = histogram
	}
	o.instrumentMu.Unlock()

	histogram.Record(ctx, int64(val))
	return nil
}

func (o *OtelMetricService) Gauge(ctx context.Context, name models.MetricName, monitor models.ResourceMonitor) error {
	o.instrumentMu.Lock()
	defer o.instrumentMu.Unlock()

	if _, found := o.gauges[name]; found {
		return nil
	}
	gauge, err := o.meter.Int64ObservableGauge(
		string(name),
		metric.WithInt64Callback(func(callbackCtx context.Context, observer metric.Int64Observer) error {
			value, err := monitor.GetValue(callbackCtx)
			if err != nil {
				return err
			}
			observer.Observe(int64(value))
			return nil
		}),
	)
	if err != nil {
		return err
	}
	o.gauges[name] = gauge
	return nil
}

func (o *OtelMetricService) Shutdown(ctx context.Context) {
	if err := o.meterProvider.Shutdown(ctx); err != nil {
		o.logger.Errorf("metrics: shutdown error: %v", err)
	}
}
