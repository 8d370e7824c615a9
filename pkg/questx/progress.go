package questx

import "math"

// Step is the per-step input to AggregateProgress. Progress is expected to
// be in [0, 100] already; it is not clamped again here.
type Step struct {
	Progress float64 `json:"progress"`
}

// AggregateProgress returns the mean step progress rounded half away from
// zero, or 0 for no steps.
func AggregateProgress(steps []Step) int {
	if len(steps) == 0 {
		return 0
	}

	var sum float64
	for _, s := range steps {
		sum += s.Progress
	}
	return int(math.Round(sum / float64(len(steps))))
}

// ColorBand is the colour a progress value is rendered with.
type ColorBand string

const (
	ColorRed     ColorBand = "red"
	ColorOrange  ColorBand = "orange"
	ColorYellow  ColorBand = "yellow"
	ColorGreen   ColorBand = "green"
	ColorVictory ColorBand = "victory"
)

// ProgressColor maps overall progress onto its band:
//
//	<= 25   red (negative values included)
//	26-50   orange
//	51-75   yellow
//	76-99   green
//	>= 100  victory
func ProgressColor(progress int) ColorBand {
	switch {
	case progress >= 100:
		return ColorVictory
	case progress >= 76:
		return ColorGreen
	case progress >= 51:
		return ColorYellow
	case progress >= 26:
		return ColorOrange
	default:
		return ColorRed
	}
}
