package rlog

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchange is the topic exchange log events are published to.
	DefaultExchange = "ddsc.log"

	heartbeat    = 10 * time.Second
	closeTimeout = 2 * time.Second
)

// Dialer opens transport connections to the broker. url is used as given,
// so credentials and vhost must already be URL encoded ("/" as "%2F").
type Dialer interface {
	Dial(url string) (Connection, error)
}

// Connection is one transport connection to the broker.
type Connection interface {
	Channel() (Channel, error)
	Close() error
}

// Channel is the subset of an AMQP channel the publisher depends on.
// *amqp.Channel satisfies it.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// Topology describes where events are published.
type Topology struct {
	// Exchange is the topic exchange name.
	Exchange string
	// Durable makes the declared exchange (or queue) survive a broker restart.
	Durable bool
	// Queue, when set, bypasses the topic exchange: events go through the
	// broker's default exchange straight into this queue, and the queue
	// name is used as routing key.
	Queue string
}

// DefaultTopology is a durable topic exchange named DefaultExchange.
func DefaultTopology() Topology {
	return Topology{
		Exchange: DefaultExchange,
		Durable:  true,
	}
}

// declare the publishing destination on the broker. Both declarations are
// idempotent as long as the properties do not change.
func (t Topology) declare(ch Channel) error {
	if t.Queue != "" {
		_, err := ch.QueueDeclare(
			t.Queue,   // name
			t.Durable, // durable
			false,     // auto-deleted
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		return err
	}
	return ch.ExchangeDeclare(
		t.Exchange,         // name
		amqp.ExchangeTopic, // type
		t.Durable,          // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
}

// exchange and routing key for a message under this topology
func (t Topology) route(msg Message) (string, string) {
	if t.Queue != "" {
		return "", t.Queue
	}
	return t.Exchange, msg.RoutingKey
}

// AMQPDialer dials RabbitMQ with amqp091-go.
type AMQPDialer struct {
	// ConnectionName is reported to the broker and shows up in the
	// management UI.
	ConnectionName string
}

// Dial implements Dialer.
func (d AMQPDialer) Dial(url string) (Connection, error) {
	cfg := amqp.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: amqp.NewConnectionProperties(),
	}
	if d.ConnectionName != "" {
		cfg.Properties.SetClientConnectionName(d.ConnectionName)
	}
	conn, err := amqp.DialConfig(url, cfg)
	if err != nil {
		return nil, err
	}
	return amqpConn{conn: conn}, nil
}

// wrap *amqp.Connection so Channel returns the interface
type amqpConn struct {
	conn *amqp.Connection
}

func (c amqpConn) Channel() (Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Close waits a bounded time for the broker's close-ok; a connection whose
// peer is gone must not hold the logging caller.
func (c amqpConn) Close() error {
	err := c.conn.CloseDeadline(time.Now().Add(closeTimeout))
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
