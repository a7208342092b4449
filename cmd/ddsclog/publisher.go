package main

import (
	"fmt"
	"os"

	"go.opentelemetry.io/otel/metric"

	"github.com/odit-bit/ddsclog/internal/config"
	"github.com/odit-bit/ddsclog/rabbit/rlog"
)

func newPublisher(cfg *config.Config, g *globals, mp metric.MeterProvider) (*rlog.Publisher, error) {
	opts, err := cfg.PublisherOptions()
	if err != nil {
		return nil, err
	}
	opts.MeterProvider = mp
	opts.Logger = g.logger()

	host, _ := os.Hostname()
	dialer := rlog.AMQPDialer{ConnectionName: fmt.Sprintf("ddsclog@%s[%d]", host, os.Getpid())}
	return rlog.NewPublisher(dialer, cfg.BrokerURL, opts)
}
