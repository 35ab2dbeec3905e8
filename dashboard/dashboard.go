package dashboard

import (
	"github.com/hashicorp/go-multierror"
	"github.com/minor-industries/livechart/broker"
	"github.com/minor-industries/livechart/channels"
	"github.com/minor-industries/livechart/messages"
	"github.com/minor-industries/livechart/schema"
	"github.com/minor-industries/livechart/storage"
	"github.com/pkg/errors"
	"sync"
)

var (
	ErrEmptyBatch     = errors.New("batch has no data records")
	ErrMissingField   = errors.New("missing numeric field")
	ErrUnknownChannel = errors.New("unknown channel")
)

type Channel struct {
	Index   int
	Mapping channels.Mapping
	Series  *storage.Series
	Chart   schema.Chart

	// Generation is bumped by every Replace.
	Generation int
}

// Snapshot is a copy of one channel's state, safe to use outside the lock.
type Snapshot struct {
	Index      int
	Generation int
	Points     []schema.Point
	Chart      schema.Chart
}

// Dashboard is the page-scoped state: one Channel per chart.
type Dashboard struct {
	mu       sync.Mutex
	channels []*Channel
	pub      broker.Publisher[schema.Redraw]
}

// New creates one empty channel per table entry. pub may be nil.
func New(table channels.Table, pub broker.Publisher[schema.Redraw]) (*Dashboard, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate channels")
	}

	d := &Dashboard{pub: pub}
	for _, idx := range table.Indexes() {
		d.channels = append(d.channels, &Channel{
			Index:   idx,
			Mapping: table[idx],
			Series:  storage.NewSeries(),
			Chart:   schema.Chart{Type: schema.ChartType},
		})
	}

	return d, nil
}

func (d *Dashboard) Len() int {
	return len(d.channels)
}

// Apply appends one sample per channel from the first data record of batch
// and retitles the charts. A channel whose fields are missing is skipped and
// reported in the returned error; the remaining channels are still updated.
func (d *Dashboard) Apply(batch *messages.Batch) error {
	if len(batch.Data) == 0 {
		return ErrEmptyBatch
	}

	var errs *multierror.Error
	var redraws []schema.Redraw

	d.mu.Lock()
	for _, ch := range d.channels {
		m := ch.Mapping

		x, ok := batch.Number(m.X)
		if !ok {
			errs = multierror.Append(errs, errors.Wrapf(ErrMissingField, "channel %d: %s", ch.Index, m.X))
			continue
		}
		y, ok := batch.Number(m.Y)
		if !ok {
			errs = multierror.Append(errs, errors.Wrapf(ErrMissingField, "channel %d: %s", ch.Index, m.Y))
			continue
		}

		p := schema.Point{X: x, Y: y}
		offset := ch.Series.Len()
		ch.Series.Append(p)

		ch.Chart.Title = m.X + " - " + m.Y
		ch.Chart.XAxis = batch.AxisTitle(m.X)
		ch.Chart.YAxis = batch.AxisTitle(m.Y)

		redraws = append(redraws, schema.Redraw{
			Channel:    ch.Index,
			Generation: ch.Generation,
			Offset:     offset,
			Points:     []schema.Point{p},
			Chart:      ch.Chart,
		})
	}
	d.mu.Unlock()

	d.publish(redraws)

	return errs.ErrorOrNil()
}

// Replace swaps a channel's whole series and title, e.g. for demo data.
func (d *Dashboard) Replace(index int, points []schema.Point, title string) error {
	d.mu.Lock()
	ch, err := d.channel(index)
	if err != nil {
		d.mu.Unlock()
		return err
	}

	ch.Series.Reset(points)
	ch.Chart.Title = title
	ch.Generation++
	redraw := schema.Redraw{
		Channel:    ch.Index,
		Generation: ch.Generation,
		Points:     ch.Series.Points(),
		Chart:      ch.Chart,
		Reset:      true,
	}
	d.mu.Unlock()

	d.publish([]schema.Redraw{redraw})
	return nil
}

// Snapshot copies the requested channels, or all of them when none are given.
func (d *Dashboard) Snapshot(indexes ...int) ([]Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(indexes) == 0 {
		for _, ch := range d.channels {
			indexes = append(indexes, ch.Index)
		}
	}

	result := make([]Snapshot, 0, len(indexes))
	for _, idx := range indexes {
		ch, err := d.channel(idx)
		if err != nil {
			return nil, err
		}
		result = append(result, ch.snapshot(0))
	}

	return result, nil
}

// Tail is a snapshot of a channel holding only the points from index start onwards.
func (d *Dashboard) Tail(index int, start int) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, err := d.channel(index)
	if err != nil {
		return Snapshot{}, err
	}
	return ch.snapshot(start), nil
}

func (ch *Channel) snapshot(start int) Snapshot {
	return Snapshot{
		Index:      ch.Index,
		Generation: ch.Generation,
		Points:     ch.Series.After(start),
		Chart:      ch.Chart,
	}
}

func (d *Dashboard) channel(index int) (*Channel, error) {
	if index < 0 || index >= len(d.channels) {
		return nil, errors.Wrapf(ErrUnknownChannel, "%d", index)
	}
	return d.channels[index], nil
}

func (d *Dashboard) publish(redraws []schema.Redraw) {
	if d.pub == nil {
		return
	}
	for _, r := range redraws {
		d.pub.Publish(r)
	}
}
