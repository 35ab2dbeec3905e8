package messages

//go:generate msgp -io=false -tests=false

// Batch is one inbound telemetry message. Only Data[0] is consulted.
type Batch struct {
	Data  []map[string]any  `json:"data"`
	Label map[string]string `json:"label"`
	Unit  map[string]string `json:"unit"`
}

// Request is sent by the page once its socket opens.
type Request struct {
	Channels []int `json:"channels"`
}

// Data is sent to the page as a msgpack binary frame: first a snapshot of
// every requested channel, then one message per redraw.
type Data struct {
	Series []Series `msg:"series"`
	Error  string   `msg:"error"`
}

type Series struct {
	Pos    int       `msg:"pos"`
	Reset  bool      `msg:"reset"`
	X      []float64 `msg:"x"`
	Y      []float64 `msg:"y"`
	Title  string    `msg:"title"`
	XTitle string    `msg:"xTitle"`
	YTitle string    `msg:"yTitle"`
}
