package fitapp

import "math"

// Unavailable is the sentinel for a value that could not be computed.
func Unavailable() float64 {
	return math.NaN()
}

// IsAvailable reports whether v is a usable number.
func IsAvailable(v float64) bool {
	return isFinite(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}

func nullableFloats(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if isFinite(v) {
			out[i] = floatPtr(v)
		}
	}
	return out
}

// zeroFilled replaces every unavailable value with 0.
func zeroFilled(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if isFinite(v) {
			out[i] = v
		}
	}
	return out
}

// mean averages values; NaN when empty or when any value is unavailable.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
