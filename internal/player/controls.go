package player

import (
	"math"
	"slices"
	"time"
)

// Speeds are the selectable playback rates, ascending.
var Speeds = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

const (
	// BoostRate is applied while the boost key is held.
	BoostRate = 2.0
	// BoostHold is how long the boost key must be held before boosting.
	BoostHold = 500 * time.Millisecond

	countdownSteps = 3
	countdownTick  = time.Second

	// A stored position is only offered for resume if it is past
	// resumeMinPosition and more than resumeTailGuard before the end.
	resumeMinPosition = 5.0
	resumeTailGuard   = 10.0
	// Stored fractions at or above this are treated as watched through.
	resumeMaxFraction = 0.95

	volumeStep = 0.1
)

// ValidSpeed reports whether rate is one of Speeds.
func ValidSpeed(rate float64) bool {
	return slices.Contains(Speeds, rate)
}

// stepSpeed returns the speed dir steps away from rate, staying in range.
func stepSpeed(rate float64, dir int) float64 {
	i := slices.Index(Speeds, rate)
	if i < 0 {
		i = slices.Index(Speeds, 1)
	}
	i = max(0, min(len(Speeds)-1, i+dir))
	return Speeds[i]
}

// knownDuration reports whether d is a usable media length. Media elements
// report NaN or +Inf until metadata loads.
func knownDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 1)
}

// ClampSeek limits t to [0, duration]. An unknown duration only clamps
// the lower bound.
func ClampSeek(t, duration float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if knownDuration(duration) && t > duration {
		return duration
	}
	if math.IsInf(t, 1) {
		return 0
	}
	return t
}

// PercentPosition maps digit 0-9 to 0%-90% of duration.
func PercentPosition(digit int, duration float64) (float64, bool) {
	if digit < 0 || digit > 9 || !knownDuration(duration) {
		return 0, false
	}
	return duration * float64(digit) / 10, true
}

func clampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return max(0, min(1, v))
}

// resumePosition returns where to offer resuming, if anywhere. position is
// in seconds; fraction is the stored progress used when no position exists.
func resumePosition(position, fraction, duration float64) (float64, bool) {
	if !knownDuration(duration) {
		return 0, false
	}
	if position <= 0 && fraction > 0 && fraction < resumeMaxFraction {
		position = fraction * duration
	}
	if position > resumeMinPosition && position < duration-resumeTailGuard {
		return position, true
	}
	return 0, false
}
