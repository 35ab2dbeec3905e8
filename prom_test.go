package livechart

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"testing"
	"time"
)

func TestTimeoutGaugesExpire(t *testing.T) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "value"}, []string{"channel"})
	g := newTimeoutGauges(vec, 10*time.Second)

	t0 := time.Now()
	g.Set("0", 1.5, t0)
	g.Set("1", 2.5, t0.Add(8*time.Second))
	require.Equal(t, 2, testutil.CollectAndCount(vec))

	g.expire(t0.Add(9 * time.Second))
	require.Equal(t, 2, testutil.CollectAndCount(vec))

	g.expire(t0.Add(10 * time.Second))
	require.Equal(t, 1, testutil.CollectAndCount(vec))
	require.Equal(t, 2.5, testutil.ToFloat64(vec.WithLabelValues("1")))

	g.Set("0", 3, t0.Add(11*time.Second))
	g.expire(t0.Add(18 * time.Second))
	require.Equal(t, 1, testutil.CollectAndCount(vec))
	require.Equal(t, 3.0, testutil.ToFloat64(vec.WithLabelValues("0")))
}

func TestChannelValuesExpireWhenTelemetryStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	v, err := New(ctx, Options{
		Logger:       zap.NewNop(),
		Registerer:   reg,
		Gatherer:     reg,
		ValueTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	require.NoError(t, v.HandleBatch(ctx, sample(2)))

	require.Eventually(t, func() bool {
		return testutil.CollectAndCount(v.metrics.value) == 8
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return testutil.CollectAndCount(v.metrics.value) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// lengths are not values and stay
	require.Equal(t, 8, testutil.CollectAndCount(v.metrics.length))
}
