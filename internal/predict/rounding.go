package predict

import (
	"math"

	"discflight/internal/model"
)

// Round converts a model output to an integer flight number. Halves go to
// the nearest even integer; -0.0 and -0.4 both land on 0. Non-finite outputs
// map to 0.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.RoundToEven(v))
}

// Flight is a rounded estimate.
type Flight struct {
	Speed int
	Glide int
	Turn  int
	Fade  int
}

// RoundEstimate applies Round to all four outputs.
func RoundEstimate(e model.Estimate) Flight {
	return Flight{
		Speed: Round(e.Speed),
		Glide: Round(e.Glide),
		Turn:  Round(e.Turn),
		Fade:  Round(e.Fade),
	}
}
