package rlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/odit-bit/ddsclog/rabbit/rlog/internal/bpool"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

// BodyMode selects how an Event is serialized into a message body. It is
// chosen once per publisher.
type BodyMode int

const (
	// BodyStructured publishes a JSON object with the keys source, host,
	// level, line, message and time.
	BodyStructured BodyMode = iota
	// BodyRendered publishes the event's rendered text.
	BodyRendered
)

func (m BodyMode) String() string {
	switch m {
	case BodyStructured:
		return "json"
	case BodyRendered:
		return "text"
	default:
		return "BodyMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseBodyMode accepts "json" (or "structured") and "text" (or "rendered").
func ParseBodyMode(s string) (BodyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "structured":
		return BodyStructured, nil
	case "text", "rendered":
		return BodyRendered, nil
	}
	return 0, fmt.Errorf("unknown body mode %q", s)
}

// Message is the routed form of an Event, computed at publish time.
type Message struct {
	RoutingKey  string
	Body        []byte
	ContentType string
}

// RoutingKey returns "<host>.<LEVEL>", the key consumers filter on.
func RoutingKey(host string, lvl Level) string {
	return host + "." + lvl.String()
}

// Build routes and serializes ev.
func (m BodyMode) Build(ev Event) (Message, error) {
	msg := Message{RoutingKey: RoutingKey(ev.Host, ev.Level)}
	switch m {
	case BodyStructured:
		body, err := structured(ev)
		if err != nil {
			return Message{}, err
		}
		msg.Body = body
		msg.ContentType = contentTypeJSON
	case BodyRendered:
		text := ev.Rendered
		if text == "" {
			text = ev.Message
		}
		msg.Body = []byte(text)
		msg.ContentType = contentTypeText
	default:
		return Message{}, fmt.Errorf("unknown body mode %d", int(m))
	}
	return msg, nil
}

func structured(ev Event) ([]byte, error) {
	jb := getJsonBuilder()
	defer jb.free()

	jb.buf.WriteByte('{')
	jb.appendKey("source", true)
	jb.appendString(ev.Source)
	jb.appendKey("host", false)
	jb.appendString(ev.Host)
	jb.appendKey("level", false)
	jb.appendString(ev.Level.String())
	jb.appendKey("line", false)
	*jb.buf = strconv.AppendInt(*jb.buf, int64(ev.Line), 10)
	jb.appendKey("message", false)
	jb.appendString(ev.Message)
	jb.appendKey("time", false)
	*jb.buf = strconv.AppendFloat(*jb.buf, epochSeconds(ev.Time), 'f', -1, 64)
	jb.buf.WriteByte('}')

	if jb.err != nil {
		return nil, jb.err
	}
	return bytes.Clone(*jb.buf), nil
}

type jsonBuilder struct {
	buf *bpool.B
	err error
}

func getJsonBuilder() jsonBuilder {
	return jsonBuilder{
		buf: bpool.New(),
	}
}

func (jb *jsonBuilder) free() {
	jb.buf.Free()
}

func (jb *jsonBuilder) appendKey(key string, first bool) {
	if !first {
		jb.buf.WriteByte(',')
	}
	jb.appendString(key)
	jb.buf.WriteByte(':')
}

func (jb *jsonBuilder) appendString(v string) {
	jb.appendJSON(v)
}

func (jb *jsonBuilder) appendJSON(v any) {
	var bb bytes.Buffer
	enc := json.NewEncoder(&bb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		if jb.err == nil {
			jb.err = err
		}
		return
	}
	bs := bb.Bytes()
	jb.buf.Write(bs[:len(bs)-1]) // remove final newline
}
