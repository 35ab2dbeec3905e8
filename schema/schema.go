package schema

// ChartType is the trace type used by every chart: a continuous scatter/line.
const ChartType = "scattergl"

type Point struct {
	X float64
	Y float64
}

type Chart struct {
	Title string
	XAxis string
	YAxis string
	Type  string
}

// Redraw is published whenever a channel's series or chart changes.
// Offset is the series index of Points[0]. When Reset is set, Points
// holds the whole series and replaces whatever the receiver has.
// Generation counts the resets of the channel; offsets are only
// comparable within one generation.
type Redraw struct {
	Channel    int
	Generation int
	Offset     int
	Points     []Point
	Chart      Chart
	Reset      bool
}

func (r Redraw) Name() string {
	return "redraw"
}

// End is the series length after the redraw is applied.
func (r Redraw) End() int {
	return r.Offset + len(r.Points)
}
