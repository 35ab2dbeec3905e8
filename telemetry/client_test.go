package telemetry

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/minor-industries/livechart/messages"
	"github.com/minor-industries/livechart/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"net/http"
	"net/http/httptest"
	"nhooyr.io/websocket"
	"strings"
	"sync"
	"testing"
	"time"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type collector struct {
	mu      sync.Mutex
	batches []*messages.Batch
}

func (c *collector) handle(_ context.Context, b *messages.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, b)
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
}

// scripted serves each frame in order, then closes normally.
func scripted(t *testing.T, frames ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		for _, f := range frames {
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(f)); err != nil {
				t.Error(err)
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}))
}

func TestReceivesFromSimulator(t *testing.T) {
	sim := simulator.New(simulator.Config{Interval: 5 * time.Millisecond}, zap.NewNop())
	srv := httptest.NewServer(sim.Engine())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := &collector{}
	client := NewClient(Config{URL: wsURL(srv)}, c.handle, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool { return c.len() >= 3 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.batches {
		_, ok := b.Number("ai_phy_0")
		require.True(t, ok)
	}
}

func TestMalformedMessageIsDropped(t *testing.T) {
	srv := scripted(t,
		`{"data": [{"time": 0, "ai_phy_0": 1}]}`,
		`{not json`,
		`{"data": [{"time": 1, "ai_phy_0": 2}]}`,
	)
	defer srv.Close()

	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "received"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{Name: "malformed"})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{Name: "connected"})

	c := &collector{}
	client := NewClient(
		Config{URL: wsURL(srv)},
		c.handle,
		zaptest.NewLogger(t),
		WithMetrics(received, malformed, connected),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Run(ctx)
	require.Error(t, err, "socket close ends the run without reconnect")
	require.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))

	require.Equal(t, 2, c.len())
	tm, ok := c.batches[1].Number("time")
	require.True(t, ok)
	require.Equal(t, 1.0, tm)

	require.Equal(t, 3.0, testutil.ToFloat64(received))
	require.Equal(t, 1.0, testutil.ToFloat64(malformed))
	require.Equal(t, 0.0, testutil.ToFloat64(connected))
}

func TestHandlerErrorDoesNotStopLoop(t *testing.T) {
	srv := scripted(t, `{"data": []}`, `{"data": []}`)
	defer srv.Close()

	calls := 0
	client := NewClient(Config{URL: wsURL(srv)}, func(context.Context, *messages.Batch) error {
		calls++
		return context.DeadlineExceeded
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.Run(ctx)
	require.Equal(t, 2, calls)
}

func TestReconnect(t *testing.T) {
	var mu sync.Mutex
	sessions := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sessions++
		mu.Unlock()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"data": [{"time": 0}]}`))
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}))
	defer srv.Close()

	c := &collector{}
	client := NewClient(Config{
		URL:         wsURL(srv),
		Reconnect:   true,
		MaxInterval: 20 * time.Millisecond,
	}, c.handle, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool { return c.len() >= 3 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, sessions, 3)
}

func TestDialFailure(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1/"}, func(context.Context, *messages.Batch) error {
		return nil
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Run(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dial")
}

func TestReadLimit(t *testing.T) {
	srv := scripted(t, `{"data": [{"time": 0, "ai_phy_0": 1, "ai_phy_1": 2, "ai_phy_2": 3, "ai_phy_3": 4}], "label": {"time": "Time"}, "unit": {"time": "s"}}`)
	defer srv.Close()

	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "received"})

	c := &collector{}
	client := NewClient(
		Config{URL: wsURL(srv), ReadLimit: 64},
		c.handle,
		zaptest.NewLogger(t),
		WithMetrics(received, nil, nil),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Run(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read limited")
	require.Equal(t, 0, c.len())
	require.Equal(t, 0.0, testutil.ToFloat64(received))
}
