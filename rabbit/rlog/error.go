package rlog

import (
	"fmt"
	"log"
)

// ConnectError reports a failure to open a session: the broker was
// unreachable, rejected the credentials, or the channel or exchange could
// not be set up.
type ConnectError struct {
	Op  string // "dial", "channel" or "declare"
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("rlog: connect: %s: %v", e.Op, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// PublishError reports a failed publish on an established session.
type PublishError struct {
	Attempt int
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("rlog: publish attempt %d: %v", e.Attempt, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// EncodeError reports an event that could not be turned into a message.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("rlog: encode: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// /
func panicOnError(err error, msg string) {
	if err != nil {
		log.Panicf("%s:%s", msg, err)
	}
}
