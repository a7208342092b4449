// ddsclog publishes log lines to a RabbitMQ topic exchange and tails them
// back, filtered by host and severity.
//
//	ddsclog emit [flags] [--level L] message...
//	ddsclog pipe [flags] [--level L]     publish every stdin line
//	ddsclog tail [flags] [--host H] [--level L]...
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/odit-bit/ddsclog/internal/config"
)

const usage = `usage: ddsclog <emit|pipe|tail> [flags]

  emit   publish one event built from the remaining arguments
  pipe   publish each line read from stdin
  tail   print events received from the exchange
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "emit":
		return runEmit(args)
	case "pipe":
		return runPipe(args)
	case "tail":
		return runTail(args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// common flags of every command
type globals struct {
	fs      *pflag.FlagSet
	verbose bool
}

func newFlagSet(name string) *globals {
	g := &globals{fs: pflag.NewFlagSet("ddsclog "+name, pflag.ContinueOnError)}
	config.RegisterFlags(g.fs)
	g.fs.BoolVarP(&g.verbose, "verbose", "v", false, "log diagnostics to stderr")
	return g
}

// parse args and resolve the layered configuration
func (g *globals) load(args []string) (*config.Config, error) {
	if err := g.fs.Parse(args); err != nil {
		return nil, err
	}
	path, _ := g.fs.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFlags(g.fs)
	return cfg, nil
}

// diagnostics logger; never the broker handler itself
func (g *globals) logger() *slog.Logger {
	if !g.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
