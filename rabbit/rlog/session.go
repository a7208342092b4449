package rlog

import (
	"errors"
)

// Session is one live logical connection to the broker: a transport
// connection and the channel opened on it.
type Session struct {
	conn Connection
	ch   Channel
}

// Channel returns the session's channel.
func (s *Session) Channel() Channel {
	return s.ch
}

func (s *Session) close() error {
	var err error
	err = errors.Join(err, s.ch.Close())
	err = errors.Join(err, s.conn.Close())
	return err
}

// SessionManager owns the lifecycle of a single broker session. It knows
// how to open and tear down a session; when to reconnect is up to the
// caller.
//
// The health of the session is tracked here and nowhere else. A transport
// may still claim to be open after the broker went away, so a session is
// considered healthy until someone reports otherwise with MarkBroken.
//
// SessionManager is not safe for concurrent use.
type SessionManager struct {
	dialer   Dialer
	url      string
	topology Topology

	// nil while disconnected
	current *Session
}

// NewSessionManager returns a disconnected manager. No connection is made
// until EnsureConnected is called.
func NewSessionManager(d Dialer, url string, topology Topology) *SessionManager {
	if d == nil {
		d = AMQPDialer{}
	}
	if topology.Exchange == "" && topology.Queue == "" {
		topology.Exchange = DefaultExchange
	}
	return &SessionManager{
		dialer:   d,
		url:      url,
		topology: topology,
	}
}

// EnsureConnected opens a session if there is no healthy one. A healthy
// session is returned as is, without touching the network. On failure the
// manager stays disconnected and a *ConnectError is returned.
func (m *SessionManager) EnsureConnected() error {
	if m.current != nil {
		return nil
	}

	conn, err := m.dialer.Dial(m.url)
	if err != nil {
		return &ConnectError{Op: "dial", Err: err}
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return &ConnectError{Op: "channel", Err: err}
	}

	if err := m.topology.declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return &ConnectError{Op: "declare", Err: err}
	}

	m.current = &Session{conn: conn, ch: ch}
	return nil
}

// MarkBroken drops the current session and releases its resources. It is
// a no-op when already disconnected.
func (m *SessionManager) MarkBroken() {
	s := m.current
	m.current = nil
	if s != nil {
		// the peer may already be gone, close errors carry no information
		_ = s.close()
	}
}

// Current returns the session, if healthy.
func (m *SessionManager) Current() (*Session, bool) {
	return m.current, m.current != nil
}

// Close tears down the session and reports teardown errors.
func (m *SessionManager) Close() error {
	s := m.current
	m.current = nil
	if s == nil {
		return nil
	}
	return s.close()
}
