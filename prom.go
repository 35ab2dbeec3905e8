package livechart

import (
	"context"
	"github.com/minor-industries/livechart/broker"
	"github.com/minor-industries/livechart/schema"
	"github.com/minor-industries/livechart/telemetry"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"strconv"
	"time"
)

type metrics struct {
	batches  prometheus.Counter
	rejected prometheus.Counter
	skipped  prometheus.Counter
	value    *prometheus.GaugeVec
	length   *prometheus.GaugeVec

	received  prometheus.Counter
	malformed prometheus.Counter
	connected prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, br *broker.Broker[schema.Redraw]) (*metrics, error) {
	m := &metrics{
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livechart_batches_total",
			Help: "Telemetry batches handed to the dashboard.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livechart_batches_rejected_total",
			Help: "Batches without any data record.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livechart_channel_skips_total",
			Help: "Channel updates skipped because a field was missing or not a number.",
		}),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livechart_channel_value",
			Help: "Most recent y value per chart.",
		}, []string{"channel"}),
		length: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livechart_series_length",
			Help: "Number of points held per chart.",
		}, []string{"channel"}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livechart_telemetry_messages_total",
			Help: "Messages read from the telemetry socket.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livechart_telemetry_malformed_total",
			Help: "Telemetry messages dropped because they were not valid JSON.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "livechart_telemetry_connected",
			Help: "1 while the telemetry socket is open.",
		}),
	}

	drops := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "livechart_redraw_drops",
		Help: "Redraws dropped because a subscriber was too slow.",
	}, func() float64 {
		return float64(br.DropCount())
	})

	subs := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "livechart_subscribers",
		Help: "Redraw subscribers, including open pages.",
	}, func() float64 {
		return float64(br.SubCount())
	})

	for _, c := range []prometheus.Collector{
		m.batches, m.rejected, m.skipped, m.value, m.length,
		m.received, m.malformed, m.connected, drops, subs,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register prometheus metric")
		}
	}

	return m, nil
}

// TelemetryMetrics reports the telemetry client's counters on /metrics.
func (v *Viewer) TelemetryMetrics() telemetry.Option {
	return telemetry.WithMetrics(v.metrics.received, v.metrics.malformed, v.metrics.connected)
}

// timeoutGauges holds the last value per channel and drops it once it has
// not been set for timeout, so a stalled stream does not report stale values.
// Only used from the metrics loop.
type timeoutGauges struct {
	vec     *prometheus.GaugeVec
	timeout time.Duration
	updated map[string]time.Time
}

func newTimeoutGauges(vec *prometheus.GaugeVec, timeout time.Duration) *timeoutGauges {
	return &timeoutGauges{
		vec:     vec,
		timeout: timeout,
		updated: map[string]time.Time{},
	}
}

func (g *timeoutGauges) Set(label string, value float64, now time.Time) {
	g.vec.WithLabelValues(label).Set(value)
	g.updated[label] = now
}

func (g *timeoutGauges) expire(now time.Time) {
	for label, t := range g.updated {
		if now.Sub(t) >= g.timeout {
			g.vec.DeleteLabelValues(label)
			delete(g.updated, label)
		}
	}
}

func (v *Viewer) publishPrometheusMetrics(ctx context.Context, valueTimeout time.Duration) {
	msgCh := v.broker.Subscribe()
	defer v.broker.Unsubscribe(msgCh)

	values := newTimeoutGauges(v.metrics.value, valueTimeout)

	ticker := time.NewTicker(valueTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			values.expire(now)
		case r, ok := <-msgCh:
			if !ok {
				return
			}

			channel := strconv.Itoa(r.Channel)
			v.metrics.length.WithLabelValues(channel).Set(float64(r.End()))
			if len(r.Points) == 0 {
				continue
			}
			lastPoint := r.Points[len(r.Points)-1]
			values.Set(channel, lastPoint.Y, time.Now())
		}
	}
}
