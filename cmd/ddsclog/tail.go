package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/odit-bit/ddsclog/rabbit/rlog"
)

func runTail(args []string) error {
	g := newFlagSet("tail")
	host := g.fs.String("host", "", "only events from this host")
	levels := g.fs.StringSlice("level", nil, "only events of these levels (repeatable)")
	cfg, err := g.load(args)
	if err != nil {
		return err
	}

	keys, err := bindingKeys(*host, *levels)
	if err != nil {
		return err
	}

	r, err := rlog.NewReceiver(cfg.BrokerURL, cfg.Topology(), keys...)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	msgC, err := r.Receive(ctx)
	if err != nil {
		return err
	}
	for body := range msgC {
		printEvent(os.Stdout, body)
	}
	return nil
}

func bindingKeys(host string, levels []string) ([]string, error) {
	if len(levels) == 0 {
		return []string{rlog.BindingKey(host, "")}, nil
	}
	keys := make([]string, 0, len(levels))
	for _, l := range levels {
		lvl, err := rlog.ParseLevel(l)
		if err != nil {
			return nil, err
		}
		keys = append(keys, rlog.BindingKey(host, lvl.String()))
	}
	return keys, nil
}

// printEvent writes structured bodies as one line; anything else verbatim.
func printEvent(w io.Writer, body []byte) {
	ev, err := rlog.DecodeEvent(body)
	if err != nil {
		fmt.Fprintf(w, "-- %s\n", body)
		return
	}
	fmt.Fprintf(w, "-- %s %s %s %s:%d %s\n",
		ev.Time.Format("2006-01-02 15:04:05.000"), ev.Host, ev.Level, ev.Source, ev.Line, ev.Message)
}
