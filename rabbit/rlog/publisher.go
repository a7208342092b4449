package rlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMaxAttempts is the number of delivery passes made for one event.
const DefaultMaxAttempts = 3

// Options configure a Publisher.
type Options struct {
	Topology Topology
	Body     BodyMode

	// MaxAttempts bounds the delivery passes for one event. Every pass
	// reconnects if needed; all but the last also publish, so at most
	// MaxAttempts-1 publishes are made. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// AppID is set as the AMQP app-id property when not empty.
	AppID string

	// MeterProvider receives the publisher's counters. Nil disables them.
	MeterProvider metric.MeterProvider

	// Logger receives diagnostics about dropped events. It must not be
	// backed by this publisher. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions publishes structured bodies to a durable ddsc.log topic
// exchange.
func DefaultOptions() Options {
	return Options{
		Topology:    DefaultTopology(),
		Body:        BodyStructured,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Publisher delivers log events to the broker on a best-effort basis.
// Emit blocks for the duration of connect and publish and never fails:
// an event that cannot be delivered is dropped.
//
// Publisher holds no locks. Callers must serialize Emit calls, as Handler
// does.
type Publisher struct {
	sessions    *SessionManager
	body        BodyMode
	maxAttempts int
	appID       string
	ins         *instruments
	logger      *slog.Logger
}

// NewPublisher returns a Publisher that dials url lazily on the first Emit.
// A nil dialer uses AMQPDialer.
func NewPublisher(d Dialer, url string, opts Options) (*Publisher, error) {
	ins, err := newInstruments(opts.MeterProvider)
	if err != nil {
		return nil, err
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxAttempts < 2 {
		return nil, fmt.Errorf("max attempts must be at least 2, got %d", opts.MaxAttempts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{
		sessions:    NewSessionManager(d, url, opts.Topology),
		body:        opts.Body,
		maxAttempts: opts.MaxAttempts,
		appID:       opts.AppID,
		ins:         ins,
		logger:      logger,
	}, nil
}

// Body returns the body mode the publisher was built with.
func (p *Publisher) Body() BodyMode {
	return p.body
}

// Emit delivers ev, or drops it. It never returns an error and never
// panics on broker failures.
func (p *Publisher) Emit(ctx context.Context, ev Event) {
	if err := p.deliver(ctx, ev); err != nil {
		p.logger.Debug("log event dropped", "routing_key", RoutingKey(ev.Host, ev.Level), "error", err)
	}
}

// Close releases the broker session. The publisher may still be used
// afterwards; the next Emit reconnects.
func (p *Publisher) Close() error {
	return p.sessions.Close()
}

// deliver makes up to maxAttempts passes for ev. Each pass reconnects if
// the session was dropped; a failed connect ends delivery at once. Passes
// before the last publish, and a failed publish drops the session for the
// next pass. The last pass only reconnects, leaving a fresh session for the
// next event.
func (p *Publisher) deliver(ctx context.Context, ev Event) error {
	msg, err := p.body.Build(ev)
	if err != nil {
		p.ins.drop(ctx, dropEncode)
		return &EncodeError{Err: err}
	}

	var lastErr *PublishError
	for attempt := 1; ; attempt++ {
		if _, ok := p.sessions.Current(); !ok {
			if err := p.sessions.EnsureConnected(); err != nil {
				p.ins.drop(ctx, dropConnect)
				return err
			}
			p.ins.reconnects.Add(ctx, 1)
		}

		if attempt >= p.maxAttempts {
			p.ins.drop(ctx, dropPublish)
			return lastErr
		}

		s, _ := p.sessions.Current()
		err := p.publish(ctx, s, msg, ev)
		if err == nil {
			p.ins.published.Add(ctx, 1)
			return nil
		}
		p.ins.failures.Add(ctx, 1)
		lastErr = &PublishError{Attempt: attempt, Err: err}

		// a cancelled caller says nothing about the session
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			p.ins.drop(ctx, dropPublish)
			return lastErr
		}

		p.sessions.MarkBroken()
	}
}

func (p *Publisher) publish(ctx context.Context, s *Session, msg Message, ev Event) error {
	exchange, key := p.sessions.topology.route(msg)
	return s.Channel().PublishWithContext(ctx, exchange, key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Transient,
			MessageId:    ksuid.New().String(),
			Timestamp:    ev.Time,
			AppId:        p.appID,
			Body:         msg.Body,
		})
}
