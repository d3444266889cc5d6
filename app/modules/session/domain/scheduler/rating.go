package scheduler

// RatingScale names the raw rating scales used by client versions.
type RatingScale string

const (
	ScalePercent RatingScale = "percent" // 0-100
	ScaleTen     RatingScale = "ten"     // 1-10
	ScaleUnit    RatingScale = "unit"    // already in [0,1]
)

// DetectScale guesses the scale of a raw rating.
func DetectScale(raw float64) RatingScale {
	switch {
	case raw > 10:
		return ScalePercent
	case raw > 1:
		return ScaleTen
	default:
		return ScaleUnit
	}
}

// NormalizeRating maps a raw rating onto [0,1].
func NormalizeRating(raw float64, scale RatingScale) float64 {
	var v float64
	switch scale {
	case ScalePercent:
		v = raw / 100
	case ScaleTen:
		v = (raw - 1) / 9
	default:
		v = raw
	}
	return max(0, min(1, v))
}
