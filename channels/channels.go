package channels

import (
	"fmt"
	"github.com/pkg/errors"
	"sort"
)

const Count = 8

type Mapping struct {
	X string `mapstructure:"x"`
	Y string `mapstructure:"y"`
}

// Table maps a chart index to the pair of batch fields plotted on it.
type Table map[int]Mapping

// Default plots time against each of the first eight physical analog inputs.
func Default() Table {
	t := Table{}
	for i := 0; i < Count; i++ {
		t[i] = Mapping{X: "time", Y: fmt.Sprintf("ai_phy_%d", i)}
	}
	return t
}

// Indexes returns the chart indexes in ascending order.
func (t Table) Indexes() []int {
	result := make([]int, 0, len(t))
	for idx := range t {
		result = append(result, idx)
	}
	sort.Ints(result)
	return result
}

// Validate checks that indexes run 0..n-1 and every mapping names both fields.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("no channels configured")
	}

	for i, idx := range t.Indexes() {
		if idx != i {
			return errors.Errorf("channel indexes must be contiguous from 0, found %d at position %d", idx, i)
		}
		m := t[idx]
		if m.X == "" || m.Y == "" {
			return errors.Errorf("channel %d: both x and y fields are required", idx)
		}
	}

	return nil
}
