package rlog

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Event is a snapshot of one log occurrence. It is built by the logging
// side and only read by the publisher.
type Event struct {
	Level   Level
	Message string
	Host    string
	Source  string // file path of the call site
	Line    int
	Time    time.Time

	// Rendered is the optional display form of the event, published
	// instead of the structured fields in BodyRendered mode.
	Rendered string
}

// epochSeconds returns t as fractional seconds since the Unix epoch.
// UnixNano overflows outside 1678..2262, so seconds and nanoseconds are
// taken apart.
func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

func fromEpochSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond))
}

// wire form of a structured body
type structuredBody struct {
	Source  string  `json:"source"`
	Host    string  `json:"host"`
	Level   string  `json:"level"`
	Line    int     `json:"line"`
	Message string  `json:"message"`
	Time    float64 `json:"time"`
}

// DecodeEvent parses a structured message body back into an Event.
// Time is restored with microsecond precision.
func DecodeEvent(body []byte) (Event, error) {
	var sb structuredBody
	if err := json.Unmarshal(body, &sb); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	lvl, err := ParseLevel(sb.Level)
	if err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return Event{
		Level:   lvl,
		Message: sb.Message,
		Host:    sb.Host,
		Source:  sb.Source,
		Line:    sb.Line,
		Time:    fromEpochSeconds(sb.Time),
	}, nil
}
