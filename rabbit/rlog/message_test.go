package rlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	for _, lvl := range Levels() {
		assert.Equal(t, "web01."+lvl.String(), RoutingKey("web01", lvl))
	}
	assert.Equal(t, "web01.ERROR", RoutingKey("web01", LevelError))
	assert.Equal(t, "db.example.org.WARNING", RoutingKey("db.example.org", LevelWarning))
}

func TestBuild_Structured(t *testing.T) {
	ev := Event{
		Level:   LevelDebug,
		Message: `quote " backslash \ and <tag>`,
		Host:    "h1",
		Source:  "/srv/app/main.go",
		Line:    7,
		Time:    time.Unix(1371118185, 896_000_000),
	}

	msg, err := BodyStructured.Build(ev)
	require.NoError(t, err)
	assert.Equal(t, "h1.DEBUG", msg.RoutingKey)
	assert.Equal(t, "application/json", msg.ContentType)

	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(msg.Body, &fields))
	assert.Len(t, fields, 6)
	assert.Equal(t, "/srv/app/main.go", fields["source"])
	assert.Equal(t, "h1", fields["host"])
	assert.Equal(t, "DEBUG", fields["level"])
	assert.Equal(t, float64(7), fields["line"])
	assert.Equal(t, ev.Message, fields["message"])
	assert.InDelta(t, 1371118185.896, fields["time"], 1e-6)
	assert.Contains(t, string(msg.Body), "<tag>", "html is not escaped")
}

func TestBuild_Rendered(t *testing.T) {
	ev := Event{Level: LevelInfo, Host: "h1", Message: "plain", Rendered: "INFO rendered"}

	msg, err := BodyRendered.Build(ev)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", msg.ContentType)
	assert.Equal(t, "INFO rendered", string(msg.Body))

	ev.Rendered = ""
	msg, err = BodyRendered.Build(ev)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(msg.Body))
}

func TestBuild_UnknownMode(t *testing.T) {
	_, err := BodyMode(9).Build(Event{})
	assert.Error(t, err)
}

func TestDecodeEvent(t *testing.T) {
	ev := Event{
		Level:   LevelCritical,
		Message: "disk full",
		Host:    "db1",
		Source:  "store.go",
		Line:    99,
		Time:    time.Unix(1700000000, 123_456_000),
	}
	msg, err := BodyStructured.Build(ev)
	require.NoError(t, err)

	got, err := DecodeEvent(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, ev.Level, got.Level)
	assert.Equal(t, ev.Host, got.Host)
	assert.Equal(t, ev.Line, got.Line)
	assert.WithinDuration(t, ev.Time, got.Time, time.Microsecond)

	_, err = DecodeEvent([]byte(`{"level":"LOUD"}`))
	assert.Error(t, err)
}

func TestParseBodyMode(t *testing.T) {
	m, err := ParseBodyMode("JSON")
	require.NoError(t, err)
	assert.Equal(t, BodyStructured, m)

	m, err = ParseBodyMode("rendered")
	require.NoError(t, err)
	assert.Equal(t, BodyRendered, m)
	assert.Equal(t, "text", m.String())

	_, err = ParseBodyMode("xml")
	assert.Error(t, err)
}

func TestBuild_TimeOutsideNanosecondRange(t *testing.T) {
	for _, at := range []time.Time{
		{},
		time.Date(2300, 1, 1, 0, 0, 0, 500_000_000, time.UTC),
	} {
		msg, err := BodyStructured.Build(Event{Level: LevelInfo, Host: "h1", Time: at})
		require.NoError(t, err)

		fields := map[string]any{}
		require.NoError(t, json.Unmarshal(msg.Body, &fields))
		assert.InDelta(t, float64(at.Unix())+float64(at.Nanosecond())/1e9, fields["time"], 1e-3)
	}
	assert.InDelta(t, -62135596800.0, epochSeconds(time.Time{}), 1e-3)
}
