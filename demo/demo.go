// Package demo fills the dashboard with synthetic sine waves so the page
// can be previewed without a telemetry server.
package demo

import (
	"fmt"
	"github.com/minor-industries/livechart/schema"
	"github.com/pkg/errors"
	"math"
)

const (
	Points    = 1000
	Amplitude = 1000.0
	Ratio     = 10.0
	Offset    = 3.14159 / 4
)

// Sine returns one series per channel: x = 0..points-1 and
// y = Amplitude * sin(x/1000*Ratio + channel*Offset).
func Sine(points int, channels int) [][]schema.Point {
	result := make([][]schema.Point, channels)
	for ch := range result {
		result[ch] = make([]schema.Point, points)
		for i := range result[ch] {
			result[ch][i] = schema.Point{
				X: float64(i),
				Y: Amplitude * math.Sin(float64(i)/1000*Ratio+float64(ch)*Offset),
			}
		}
	}
	return result
}

type Target interface {
	Len() int
	Replace(index int, points []schema.Point, title string) error
}

// Load replaces every channel of t with a generated sine wave.
func Load(t Target) error {
	for ch, points := range Sine(Points, t.Len()) {
		if err := t.Replace(ch, points, fmt.Sprintf("Chart %d", ch)); err != nil {
			return errors.Wrap(err, "replace")
		}
	}
	return nil
}
