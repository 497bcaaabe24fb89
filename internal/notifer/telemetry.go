package notifer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"notifer/internal/resolver"
)

const instrumentationName = "notifer"

type telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	tracer   trace.Tracer
	sends    metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) telemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	t := telemetry{
		tracerProvider: tp,
		meterProvider:  mp,
		tracer:         tp.Tracer(instrumentationName),
	}
	meter := mp.Meter(instrumentationName)

	var err error
	if t.sends, err = meter.Int64Counter("notifer.sends",
		metric.WithDescription("Number of notification send attempts")); err != nil {
		t.sends, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("notifer.sends")
	}
	if t.duration, err = meter.Float64Histogram("notifer.send.duration_seconds",
		metric.WithDescription("Notification send latency in seconds")); err != nil {
		t.duration, _ = noop.NewMeterProvider().Meter(instrumentationName).Float64Histogram("notifer.send.duration_seconds")
	}
	return t
}

// wrap instruments rt so the HTTP exchange appears as a child of the send span.
func (t telemetry) wrap(rt http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(rt,
		otelhttp.WithTracerProvider(t.tracerProvider),
		otelhttp.WithMeterProvider(t.meterProvider),
	)
}

// start opens the send span and returns a finisher that records the result.
func (t telemetry) start(ctx context.Context, payload resolver.Payload) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "notifer.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("notifer.topic", payload.Topic),
			attribute.Int("notifer.priority", payload.Priority),
			attribute.Int("notifer.tags", len(payload.Tags)),
		),
	)
	began := time.Now()

	return ctx, func(err error) {
		result := resultLabel(err)
		attrs := metric.WithAttributes(attribute.String("result", result))
		t.sends.Add(ctx, 1, attrs)
		t.duration.Record(ctx, time.Since(began).Seconds(), attrs)

		span.SetAttributes(attribute.String("notifer.result", result))
		if err != nil {
			span.SetAttributes(attribute.Int("http.response.status_code", StatusCode(err)))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "transport_error"
	}
}
