package livechart

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/minor-industries/livechart/broker"
	"github.com/minor-industries/livechart/channels"
	"github.com/minor-industries/livechart/dashboard"
	"github.com/minor-industries/livechart/messages"
	"github.com/minor-industries/livechart/schema"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"time"
)

const (
	subscriberBuffer    = 1024
	defaultValueTimeout = 15 * time.Second
)

type Options struct {
	Channels channels.Table
	Title    string
	Logger   *zap.Logger

	// ValueTimeout is how long a channel's last value stays on /metrics
	// without a new sample.
	ValueTimeout time.Duration

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Viewer owns the dashboard state, the redraw broker and the HTTP engine
// serving the live page.
type Viewer struct {
	log       *zap.Logger
	title     string
	dashboard *dashboard.Dashboard
	broker    *broker.Broker[schema.Redraw]
	server    *gin.Engine
	gatherer  prometheus.Gatherer
	metrics   *metrics
}

// New builds the viewer and starts its background loops; they stop when ctx is done.
func New(ctx context.Context, opts Options) (*Viewer, error) {
	if opts.Channels == nil {
		opts.Channels = channels.Default()
	}
	if opts.Title == "" {
		opts.Title = "livechart"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ValueTimeout <= 0 {
		opts.ValueTimeout = defaultValueTimeout
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	br := broker.NewBroker[schema.Redraw](subscriberBuffer)

	db, err := dashboard.New(opts.Channels, br)
	if err != nil {
		return nil, errors.Wrap(err, "new dashboard")
	}

	m, err := newMetrics(opts.Registerer, br)
	if err != nil {
		return nil, errors.Wrap(err, "register metrics")
	}

	v := &Viewer{
		log:       opts.Logger,
		title:     opts.Title,
		dashboard: db,
		broker:    br,
		server:    gin.New(),
		gatherer:  opts.Gatherer,
		metrics:   m,
	}

	if err := v.setupServer(); err != nil {
		return nil, errors.Wrap(err, "setup server")
	}

	go br.Start(ctx)
	go v.publishPrometheusMetrics(ctx, opts.ValueTimeout)

	return v, nil
}

func (v *Viewer) Dashboard() *dashboard.Dashboard {
	return v.dashboard
}

func (v *Viewer) GetEngine() *gin.Engine {
	return v.server
}

// HandleBatch applies one telemetry batch. It has the telemetry.Handler signature.
func (v *Viewer) HandleBatch(_ context.Context, batch *messages.Batch) error {
	v.metrics.batches.Inc()

	err := v.dashboard.Apply(batch)
	switch {
	case err == nil:
	case errors.Is(err, dashboard.ErrEmptyBatch):
		v.metrics.rejected.Inc()
	default:
		var merr *multierror.Error
		if errors.As(err, &merr) {
			v.metrics.skipped.Add(float64(len(merr.Errors)))
		} else {
			v.metrics.skipped.Inc()
		}
	}

	return err
}
