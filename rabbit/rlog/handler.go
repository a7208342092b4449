package rlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
)

var _ slog.Handler = (*Handler)(nil)

// Emitter is the sink a Handler forwards events to. *Publisher implements it.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
	Body() BodyMode
}

// Handler is a slog.Handler that publishes every enabled record as an
// Event. Handle never fails because of the broker.
//
// Handlers derived with WithAttrs and WithGroup share one lock, so a
// single Emitter sees one event at a time.
type Handler struct {
	groups []groupAttr
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	out    io.Writer
	e      Emitter
	host   string
}

// NewHandler returns a handler for e. Records are tagged with the local
// host name.
func NewHandler(e Emitter, opts slog.HandlerOptions) *Handler {
	if e == nil {
		panicOnError(fmt.Errorf("emitter cannot be nil"), "failed init handler")
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	h := Handler{
		opts: opts,
		mu:   &sync.Mutex{},
		e:    e,
		host: host,
	}

	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return &h
}

// WithWriter mirrors the rendered text of every record to w.
func (h *Handler) WithWriter(w io.Writer) {
	h.out = w
}

// WithHost returns a handler that tags records with host instead of the
// local host name.
func (h *Handler) WithHost(host string) *Handler {
	h2 := *h
	h2.host = host
	return &h2
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.opts.Level.Level()
}

type groupAttr struct {
	name       string
	attributes []slog.Attr
}

func (h *Handler) withGroupAttr(group groupAttr) slog.Handler {
	h2 := *h
	h2.groups = make([]groupAttr, len(h.groups)+1)
	copy(h2.groups, h.groups)
	h2.groups[len(h2.groups)-1] = group
	return &h2
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.withGroupAttr(groupAttr{attributes: attrs})
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.withGroupAttr(groupAttr{name: name})
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	ev := h.event(rec)

	var text []byte
	if h.out != nil || h.e.Body() == BodyRendered {
		text = h.render(ev, rec)
		ev.Rendered = string(text)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.e.Emit(ctx, ev)
	if h.out != nil {
		// mirror output is advisory, like the broker
		_, _ = h.out.Write(append(text, '\n'))
	}
	return nil
}

func (h *Handler) event(rec slog.Record) Event {
	ev := Event{
		Level:   LevelFromSlog(rec.Level),
		Message: rec.Message,
		Host:    h.host,
		Time:    rec.Time,
	}
	// slog allows records without a time
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if rec.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{rec.PC})
		f, _ := fs.Next()
		ev.Source = f.File
		ev.Line = f.Line
	}
	return ev
}
