package rlog

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errBrokerDown = errors.New("dial tcp 127.0.0.1:5672: connect: connection refused")

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type declared struct {
	name    string
	kind    string
	durable bool
}

// in-memory stand-in for RabbitMQ, counting every round-trip
type fakeBroker struct {
	down        bool // dial fails
	failChannel bool
	failDeclare bool
	failPublish int // fail this many upcoming publishes

	dials           int
	publishAttempts int
	exchanges       []declared
	queues          []declared
	published       []published
	conns           []*fakeConn
}

func (b *fakeBroker) Dial(url string) (Connection, error) {
	b.dials++
	if b.down {
		return nil, errBrokerDown
	}
	c := &fakeConn{b: b}
	b.conns = append(b.conns, c)
	return c, nil
}

// simulate a broker restart: live sessions go stale without noticing
func (b *fakeBroker) restart() {
	b.failPublish = 1
}

type fakeConn struct {
	b      *fakeBroker
	ch     *fakeChannel
	closed bool
}

func (c *fakeConn) Channel() (Channel, error) {
	if c.b.failChannel {
		return nil, amqp.ErrClosed
	}
	c.ch = &fakeChannel{b: c.b}
	return c.ch, nil
}

func (c *fakeConn) Close() error {
	if c.closed {
		return amqp.ErrClosed
	}
	c.closed = true
	return nil
}

type fakeChannel struct {
	b      *fakeBroker
	closed bool
}

func (ch *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if ch.b.failDeclare {
		return &amqp.Error{Code: amqp.PreconditionFailed, Reason: "PRECONDITION_FAILED - inequivalent arg 'durable'"}
	}
	ch.b.exchanges = append(ch.b.exchanges, declared{name: name, kind: kind, durable: durable})
	return nil
}

func (ch *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if ch.b.failDeclare {
		return amqp.Queue{}, &amqp.Error{Code: amqp.PreconditionFailed, Reason: "PRECONDITION_FAILED"}
	}
	ch.b.queues = append(ch.b.queues, declared{name: name, durable: durable})
	return amqp.Queue{Name: name}, nil
}

func (ch *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	ch.b.publishAttempts++
	if err := ctx.Err(); err != nil {
		return err
	}
	if ch.closed {
		return amqp.ErrClosed
	}
	if ch.b.failPublish > 0 {
		ch.b.failPublish--
		return amqp.ErrClosed
	}
	ch.b.published = append(ch.b.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (ch *fakeChannel) Close() error {
	if ch.closed {
		return amqp.ErrClosed
	}
	ch.closed = true
	return nil
}
