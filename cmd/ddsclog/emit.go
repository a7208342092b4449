package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/odit-bit/ddsclog/rabbit/rlog"
)

func runEmit(args []string) error {
	g := newFlagSet("emit")
	level := g.fs.String("level", rlog.LevelInfo.String(), "severity of the event")
	host := g.fs.String("host", "", "host name to report (default local host name)")
	cfg, err := g.load(args)
	if err != nil {
		return err
	}

	lvl, err := rlog.ParseLevel(*level)
	if err != nil {
		return err
	}
	msg := strings.Join(g.fs.Args(), " ")
	if msg == "" {
		return fmt.Errorf("emit: missing message")
	}
	if *host == "" {
		*host, _ = os.Hostname()
	}

	pub, err := newPublisher(cfg, g, nil)
	if err != nil {
		return err
	}
	defer pub.Close()

	ev := rlog.Event{
		Level:   lvl,
		Message: msg,
		Host:    *host,
		Source:  "ddsclog",
		Time:    time.Now(),
	}
	if pub.Body() == rlog.BodyRendered {
		ev.Rendered = fmt.Sprintf("%s %s %s", ev.Time.Format(time.RFC3339), lvl, msg)
	}
	pub.Emit(context.Background(), ev)
	return nil
}
