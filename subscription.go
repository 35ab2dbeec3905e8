package livechart

import (
	"context"
	"github.com/chrispappas/golang-generics-set/set"
	"github.com/minor-industries/livechart/dashboard"
	"github.com/minor-industries/livechart/messages"
	"github.com/minor-industries/livechart/schema"
	"github.com/pkg/errors"
)

// subscription streams one page's charts. sent tracks how many points of
// each channel the page already holds, so redraws that overlap the initial
// snapshot are trimmed and redraws lost to a slow socket are backfilled.
// gen is the channel generation those points belong to.
type subscription struct {
	channels set.Set[int]
	order    []int
	sent     map[int]int
	gen      map[int]int
}

func newSubscription(db *dashboard.Dashboard, req *messages.Request) (*subscription, error) {
	order := req.Channels
	if len(order) == 0 {
		for i := 0; i < db.Len(); i++ {
			order = append(order, i)
		}
	}

	for _, idx := range order {
		if idx < 0 || idx >= db.Len() {
			return nil, errors.Wrapf(dashboard.ErrUnknownChannel, "%d", idx)
		}
	}

	return &subscription{
		channels: set.FromSlice(order),
		order:    order,
		sent:     map[int]int{},
		gen:      map[int]int{},
	}, nil
}

func (sub *subscription) initialData(db *dashboard.Dashboard) (*messages.Data, error) {
	snapshots, err := db.Snapshot(sub.order...)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot")
	}

	result := &messages.Data{}
	for _, s := range snapshots {
		sub.sent[s.Index] = len(s.Points)
		sub.gen[s.Index] = s.Generation
		result.Series = append(result.Series, packSeries(s.Index, s.Points, s.Chart, true))
	}
	return result, nil
}

// next converts a redraw into the message for this page, or nil if the page
// is not showing the channel or already has every point in it.
func (sub *subscription) next(db *dashboard.Dashboard, r schema.Redraw) (*messages.Data, error) {
	ch := r.Channel
	if !sub.channels.Has(ch) {
		return nil, nil
	}

	sent := sub.sent[ch]
	gen := sub.gen[ch]

	switch {
	case r.Generation < gen:
		// from before a reset the page already has
		return nil, nil

	case r.Reset:
		sub.sent[ch] = r.End()
		sub.gen[ch] = r.Generation
		return single(packSeries(ch, r.Points, r.Chart, true)), nil

	case r.Generation > gen:
		// the reset itself was dropped
		return sub.resync(db, ch)

	case r.Offset > sent:
		// missed redraws in between; catch up from the dashboard
		tail, err := db.Tail(ch, sent)
		if err != nil {
			return nil, errors.Wrap(err, "tail")
		}
		if tail.Generation != gen {
			return sub.resync(db, ch)
		}
		sub.sent[ch] = sent + len(tail.Points)
		return single(packSeries(ch, tail.Points, tail.Chart, false)), nil

	case r.End() <= sent:
		return nil, nil

	default:
		points := r.Points[sent-r.Offset:]
		sub.sent[ch] = r.End()
		return single(packSeries(ch, points, r.Chart, false)), nil
	}
}

// resync replaces the page's copy of a channel with the dashboard's.
func (sub *subscription) resync(db *dashboard.Dashboard, ch int) (*messages.Data, error) {
	snap, err := db.Tail(ch, 0)
	if err != nil {
		return nil, errors.Wrap(err, "resync")
	}
	sub.sent[ch] = len(snap.Points)
	sub.gen[ch] = snap.Generation
	return single(packSeries(ch, snap.Points, snap.Chart, true)), nil
}

func (sub *subscription) run(
	ctx context.Context,
	v *Viewer,
	send func(*messages.Data) error,
) error {
	// subscribe before the snapshot so nothing falls between the two
	msgCh := v.broker.Subscribe()
	defer v.broker.Unsubscribe(msgCh)

	initial, err := sub.initialData(v.dashboard)
	if err != nil {
		return errors.Wrap(err, "initial data")
	}
	if err := send(initial); err != nil {
		return errors.Wrap(err, "send initial data")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-msgCh:
			if !ok {
				return nil
			}
			data, err := sub.next(v.dashboard, r)
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			if err := send(data); err != nil {
				return errors.Wrap(err, "send redraw")
			}
		}
	}
}

func single(s messages.Series) *messages.Data {
	return &messages.Data{Series: []messages.Series{s}}
}

func packSeries(channel int, points []schema.Point, chart schema.Chart, reset bool) messages.Series {
	s := messages.Series{
		Pos:    channel,
		Reset:  reset,
		X:      make([]float64, len(points)),
		Y:      make([]float64, len(points)),
		Title:  chart.Title,
		XTitle: chart.XAxis,
		YTitle: chart.YAxis,
	}
	for i, p := range points {
		s.X[i] = p.X
		s.Y[i] = p.Y
	}
	return s
}
