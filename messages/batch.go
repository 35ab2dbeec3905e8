package messages

import (
	"encoding/json"
	"math"
)

// Number returns field from the first data record if it holds a finite number.
func (b *Batch) Number(field string) (float64, bool) {
	if len(b.Data) == 0 {
		return 0, false
	}

	var f float64
	switch v := b.Data[0][field].(type) {
	case float64:
		f = v
	case json.Number:
		var err error
		if f, err = v.Float64(); err != nil {
			return 0, false
		}
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// AxisTitle renders label[field] + "[" + unit[field] + "]". A missing label
// falls back to the field name, a missing unit to the empty string.
func (b *Batch) AxisTitle(field string) string {
	label, ok := b.Label[field]
	if !ok {
		label = field
	}
	return label + "[" + b.Unit[field] + "]"
}
