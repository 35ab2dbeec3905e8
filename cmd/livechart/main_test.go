package main

import (
	"context"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/minor-industries/livechart/internal/config"
	"github.com/minor-industries/livechart/simulator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"net/http"
	"net/http/httptest"
	"nhooyr.io/websocket"
	"strings"
	"testing"
	"time"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// telemetryServer sends n simulated batches to each client, then closes normally.
func telemetryServer(t *testing.T, n int) string {
	t.Helper()
	sim := simulator.New(simulator.Config{}, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			msg, err := json.Marshal(sim.Batch(time.Now()))
			if err != nil {
				t.Error(err)
				return
			}
			if err := conn.Write(r.Context(), websocket.MessageText, msg); err != nil {
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
}

func TestServeDemoStopsOnCancel(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--demo", "--listen", "127.0.0.1:0"})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, cmd.ExecuteContext(ctx))
}

func TestServeExitsWhenTelemetryCloses(t *testing.T) {
	url := telemetryServer(t, 3)

	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--server", url, "--listen", "127.0.0.1:0"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	require.NoError(t, ctx.Err(), "must exit on the socket close, not the timeout")
	require.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestServeAppliesBatchesBeforeExit(t *testing.T) {
	v := config.New()
	v.Set(config.KeyServer, telemetryServer(t, 3))
	v.Set(config.KeyListen, "127.0.0.1:0")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg := newRegistry()
	err = serve(ctx, cfg, zap.NewNop(), reg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "telemetry")

	expected := `
# HELP livechart_batches_total Telemetry batches handed to the dashboard.
# TYPE livechart_batches_total counter
livechart_batches_total 3
# HELP livechart_telemetry_messages_total Messages read from the telemetry socket.
# TYPE livechart_telemetry_messages_total counter
livechart_telemetry_messages_total 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"livechart_batches_total", "livechart_telemetry_messages_total",
	))
}

func TestBadConfigFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--config", "/nonexistent/livechart.yaml"})
	require.Error(t, cmd.Execute())
}
