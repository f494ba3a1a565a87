package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	otelMetric "go.opentelemetry.io/otel/metric"
)

func RecordGaugeFloat(ctx context.Context, meter otelMetric.Meter, metricName string, value float64, attrs ...attribute.KeyValue) error {
	h, err := meter.Float64UpDownCounter(metricName)
	if err != nil {
		return fmt.Errorf("error creating %s gauge: %s", metricName, err.Error())
	}
	h.Add(ctx, value, otelMetric.WithAttributes(attrs...))
	return nil
}

func RecordGaugeInt(ctx context.Context, meter otelMetric.Meter, metricName string, value int64, attrs ...attribute.KeyValue) error {
	h, err := meter.Int64UpDownCounter(metricName)
	if err != nil {
		return fmt.Errorf("error creating %s gauge: %s", metricName, err.Error())
	}
	h.Add(ctx, value, otelMetric.WithAttributes(attrs...))
	return nil
}

func RecordCounterFloat(ctx context.Context, meter otelMetric.Meter, metricName string, value float64, attrs ...attribute.KeyValue) error {
	h, err := meter.Float64Counter(metricName)
	if err != nil {
		return fmt.Errorf("error creating %s counter: %s", metricName, err.Error())
	}
	h.Add(ctx, value, otelMetric.WithAttributes(attrs...))
	return nil
}

func RecordCounterInt(ctx context.Context, meter otelMetric.Meter, metricName string, value int64, attrs ...attribute.KeyValue) error {
	h, err := meter.Int64Counter(metricName)
	if err != nil {
		return fmt.Errorf("error creating %s counter: %s", metricName, err.Error())
	}
	h.Add(ctx, value, otelMetric.WithAttributes(attrs...))
	return nil
}

func RecordHistogramInt(ctx context.Context, meter otelMetric.Meter, metricName string, value int64, attrs ...attribute.KeyValue) error {
	h, err := meter.Int64Histogram(metricName)
	if err != nil {
		return fmt.Errorf("error creating %s histogram: %s", metricName, err.Error())
	}
	h.Record(ctx, value, otelMetric.WithAttributes(attrs...))
	return nil
}

func RecordHistogramFloat(ctx context.Context, meter otelMetric.Meter, metricName string, value float64, attrs ...attribute.KeyValue) error {
	h, err := meter.Float64Histogram(metricName)
	if err != nil {
		return fmt.Errorf("error creating %s histogram: %s", metricName, err.Error())
	}
	h.Record(ctx, value, otelMetric.WithAttributes(attrs...))
	return nil
}
