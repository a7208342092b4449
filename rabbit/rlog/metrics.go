package rlog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/odit-bit/ddsclog/rabbit/rlog"

// drop reasons
const (
	dropConnect = "connect"
	dropPublish = "publish"
	dropEncode  = "encode"
)

type instruments struct {
	published  metric.Int64Counter
	dropped    metric.Int64Counter
	failures   metric.Int64Counter
	reconnects metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(meterName)

	var (
		ins instruments
		err error
	)
	ins.published, err = meter.Int64Counter(
		"ddsc_log_published_total",
		metric.WithDescription("Log events handed to the broker"),
	)
	if err != nil {
		return nil, err
	}

	ins.dropped, err = meter.Int64Counter(
		"ddsc_log_dropped_total",
		metric.WithDescription("Log events dropped, by reason"),
	)
	if err != nil {
		return nil, err
	}

	ins.failures, err = meter.Int64Counter(
		"ddsc_log_publish_failures_total",
		metric.WithDescription("Failed publish attempts, including ones later retried"),
	)
	if err != nil {
		return nil, err
	}

	ins.reconnects, err = meter.Int64Counter(
		"ddsc_log_reconnects_total",
		metric.WithDescription("Broker sessions opened"),
	)
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (ins *instruments) drop(ctx context.Context, reason string) {
	ins.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
