package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/odit-bit/ddsclog/internal/monolith"
	"github.com/odit-bit/ddsclog/internal/observability"
	"github.com/odit-bit/ddsclog/rabbit/rlog"
)

func runPipe(args []string) error {
	g := newFlagSet("pipe")
	level := g.fs.String("level", rlog.LevelInfo.String(), "severity of every line")
	mirror := g.fs.Bool("mirror", false, "echo rendered lines to stdout")
	cfg, err := g.load(args)
	if err != nil {
		return err
	}

	lvl, err := rlog.ParseLevel(*level)
	if err != nil {
		return err
	}
	minLevel, err := cfg.MinLevel()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var mp metric.MeterProvider
	errC := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		provider, handler, err := observability.NewMeterProvider()
		if err != nil {
			return err
		}
		defer provider.Shutdown(context.Background())
		mp = provider

		root := Root{
			modules: []monolith.Module{&observability.Module{Handler: handler}},
			mux:     chi.NewRouter(),
			addr:    cfg.MetricsAddr,
		}
		go func() { errC <- root.Run(ctx) }()
	}

	pub, err := newPublisher(cfg, g, mp)
	if err != nil {
		return err
	}
	defer pub.Close()

	h := rlog.NewHandler(pub, slog.HandlerOptions{Level: minLevel.Slog()})
	if *mirror {
		h.WithWriter(os.Stdout)
	}
	logger := slog.New(h)

	lines := readLines(ctx, os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errC:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			logger.Log(ctx, lvl.Slog(), line)
		}
	}
}

// readLines streams lines from r until EOF or until ctx is done, then
// closes the channel.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Split(bufio.ScanLines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
