package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odit-bit/ddsclog/rabbit/rlog"
)

type mono struct {
	mux chi.Router
}

func (m *mono) Mux() chi.Router { return m.mux }

type downDialer struct{}

func (downDialer) Dial(string) (rlog.Connection, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestMetricsEndpoint(t *testing.T) {
	provider, handler, err := NewMeterProvider()
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	opts := rlog.DefaultOptions()
	opts.MeterProvider = provider
	pub, err := rlog.NewPublisher(downDialer{}, "amqp://localhost", opts)
	require.NoError(t, err)
	pub.Emit(context.Background(), rlog.Event{Level: rlog.LevelError, Host: "h1", Message: "lost"})

	m := &mono{mux: chi.NewRouter()}
	require.NoError(t, (&Module{Handler: handler}).Start(context.Background(), m))

	srv := httptest.NewServer(m.mux)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ddsc_log_dropped_total{`)
	assert.Contains(t, string(body), `reason="connect"`)
}

func TestNewMeterProvider_Independent(t *testing.T) {
	// each provider owns its registry, so building two must not collide
	_, _, err := NewMeterProvider()
	require.NoError(t, err)
	_, _, err = NewMeterProvider()
	require.NoError(t, err)
}
