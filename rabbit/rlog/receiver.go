package rlog

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BindingKey returns a topic binding for events from host at lvl. An empty
// host or level matches any.
func BindingKey(host, lvl string) string {
	if host == "" {
		host = "*"
	}
	if lvl == "" {
		lvl = "*"
	}
	return host + "." + lvl
}

// Receiver consumes log events from the topic exchange through a private,
// auto-deleted queue.
type Receiver struct {
	conn     *amqp.Connection
	keyRoute []string
	topology Topology
	isBind   bool
}

// NewReceiver dials url. Without binding keys, every event is received.
func NewReceiver(url string, topology Topology, keys ...string) (*Receiver, error) {
	if topology.Queue != "" {
		return nil, fmt.Errorf("receiver needs a topic exchange, got queue %q", topology.Queue)
	}
	if topology.Exchange == "" {
		topology.Exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, &ConnectError{Op: "dial", Err: err}
	}

	return &Receiver{
		conn:     conn,
		keyRoute: keys,
		topology: topology,
	}, nil
}

// AddBinding adds a binding key. It must be called before Receive.
func (r *Receiver) AddBinding(key string) error {
	if r.isBind {
		return fmt.Errorf("receiver already bound")
	}
	r.keyRoute = append(r.keyRoute, key)
	return nil
}

func (r *Receiver) Close() error {
	var err error
	err = errors.Join(err, r.conn.Close())
	return err
}

// Receive binds the queue and streams message bodies until ctx is done or
// the connection closes.
func (r *Receiver) Receive(ctx context.Context) (<-chan []byte, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, &ConnectError{Op: "channel", Err: err}
	}

	if err := r.topology.declare(ch); err != nil {
		ch.Close()
		return nil, &ConnectError{Op: "declare", Err: err}
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	keys := r.keyRoute
	if len(keys) == 0 {
		keys = []string{"#"}
	}
	//!!binding the exchange
	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, r.topology.Exchange, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("bind %q: %w", key, err)
		}
	}
	r.isBind = true

	msgC, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}

	inC := make(chan []byte)
	go func() {
		defer close(inC)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgC:
				if !ok {
					return
				}
				select {
				case inC <- d.Body:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return inC, nil
}
