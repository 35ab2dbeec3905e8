package dashboard

import (
	"bytes"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestRenderPage(t *testing.T) {
	d, _ := newDashboard(t)
	require.NoError(t, d.Apply(decode(t, batchJSON(0, [8]float64{1.2, 2, 3, 4, 5, 6, 7, 3.4}))))

	var buf bytes.Buffer
	require.NoError(t, d.RenderPage(&buf, "livechart", "/msgpack.min.js", "/livechart.js"))
	html := buf.String()

	for i := 0; i < 8; i++ {
		require.Contains(t, html, PlotID(i))
	}
	require.Contains(t, html, "Time[s]")
	require.Contains(t, html, "Channel 0[V]")
	require.Contains(t, html, `<script src="/livechart.js"></script>`)

	decoder := strings.Index(html, `<script src="/msgpack.min.js">`)
	script := strings.Index(html, `<script src="/livechart.js">`)
	lastChart := strings.LastIndex(html, PlotID(7))
	require.Greater(t, script, lastChart, "live script must load after the charts are created")
	require.Less(t, decoder, script, "decoder must load before the live script")
	require.Greater(t, decoder, 0)
}

func TestPlotID(t *testing.T) {
	require.Equal(t, "plot_0", PlotID(0))
	require.Equal(t, "plot_7", PlotID(7))
}
