package storage

import (
	"github.com/gammazero/deque"
	"github.com/minor-industries/livechart/schema"
)

// Series is the append-only sample history of one channel. x and y are kept
// together as points, so the two sequences can never differ in length.
// Not safe for concurrent use; the dashboard serializes access.
type Series struct {
	points *deque.Deque[schema.Point]
}

func NewSeries() *Series {
	return &Series{
		points: deque.New[schema.Point](0, 64),
	}
}

func (s *Series) Append(p schema.Point) {
	s.points.PushBack(p)
}

// Reset replaces the whole history.
func (s *Series) Reset(points []schema.Point) {
	s.points.Clear()
	for _, p := range points {
		s.points.PushBack(p)
	}
}

func (s *Series) Len() int {
	return s.points.Len()
}

// After returns a copy of the points from index start onwards.
func (s *Series) After(start int) []schema.Point {
	if start < 0 {
		start = 0
	}
	n := s.points.Len()
	if start >= n {
		return nil
	}

	result := make([]schema.Point, 0, n-start)
	for i := start; i < n; i++ {
		result = append(result, s.points.At(i))
	}
	return result
}

func (s *Series) Points() []schema.Point {
	return s.After(0)
}
