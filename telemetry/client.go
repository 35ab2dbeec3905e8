// Package telemetry reads sample batches from the telemetry server socket.
// The connection is receive-only: nothing is ever written to the server.
package telemetry

import (
	"context"
	"encoding/json"
	"github.com/cenkalti/backoff/v4"
	"github.com/minor-industries/livechart/internal/config"
	"github.com/minor-industries/livechart/messages"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"time"
)

const DefaultURL = config.DefaultServer

// Handler is called for every decoded batch, one at a time, on the read loop.
type Handler func(ctx context.Context, batch *messages.Batch) error

type Config struct {
	URL       string
	Reconnect bool
	ReadLimit int64

	// MaxInterval caps the wait between reconnect attempts.
	MaxInterval time.Duration
}

type Client struct {
	cfg     Config
	handler Handler
	log     *zap.Logger

	received  prometheus.Counter
	malformed prometheus.Counter
	connected prometheus.Gauge
}

type Option func(*Client)

// WithMetrics counts received and malformed messages and tracks whether
// the socket is connected. Any of the collectors may be nil.
func WithMetrics(received, malformed prometheus.Counter, connected prometheus.Gauge) Option {
	return func(c *Client) {
		c.received = received
		c.malformed = malformed
		c.connected = connected
	}
}

func NewClient(cfg Config, handler Handler, log *zap.Logger, options ...Option) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	c := &Client{
		cfg:     cfg,
		handler: handler,
		log:     log,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Run reads batches until the socket closes or ctx is done. With Reconnect
// set, a closed or failed socket is redialed with exponential backoff.
func (c *Client) Run(ctx context.Context) error {
	if !c.cfg.Reconnect {
		return c.session(ctx, func() {})
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = c.cfg.MaxInterval
	if bo.InitialInterval > bo.MaxInterval {
		bo.InitialInterval = bo.MaxInterval
	}
	bo.MaxElapsedTime = 0
	bo.Reset()

	return backoff.RetryNotify(
		func() error {
			err := c.session(ctx, bo.Reset)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		},
		backoff.WithContext(bo, ctx),
		func(err error, wait time.Duration) {
			c.log.Warn("telemetry connection lost", zap.Error(err), zap.Duration("retry_in", wait))
		},
	)
}

func (c *Client) session(ctx context.Context, onConnect func()) error {
	conn, _, err := websocket.Dial(ctx, c.cfg.URL, nil)
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	if c.cfg.ReadLimit > 0 {
		conn.SetReadLimit(c.cfg.ReadLimit)
	}

	c.log.Info("connected to telemetry server", zap.String("url", c.cfg.URL))
	c.setConnected(1)
	defer c.setConnected(0)
	onConnect()

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read")
		}

		if c.received != nil {
			c.received.Inc()
		}

		batch, err := decode(msg)
		if err != nil {
			if c.malformed != nil {
				c.malformed.Inc()
			}
			c.log.Warn("dropping malformed message", zap.Error(err), zap.Int("size", len(msg)))
			continue
		}

		if err := c.handler(ctx, batch); err != nil {
			c.log.Warn("batch not fully applied", zap.Error(err))
		}
	}
}

func decode(msg []byte) (*messages.Batch, error) {
	var batch messages.Batch
	if err := json.Unmarshal(msg, &batch); err != nil {
		return nil, errors.Wrap(err, "unmarshal batch")
	}
	return &batch, nil
}

func (c *Client) setConnected(v float64) {
	if c.connected != nil {
		c.connected.Set(v)
	}
}
