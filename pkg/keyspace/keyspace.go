// Package keyspace implements circular location-key arithmetic and
// uniqueness-checked key allocation for the darknet overlay.
//
// Location keys are points on the circular space [0, 1). Peers and content
// both occupy positions in this space; routing decisions compare circular
// distances between them.
package keyspace

import "math"

// Key is a location key: a point on the circular key space [0, 1).
type Key float64

// Distance returns the circular distance between two keys:
// min(|a-b|, 1-|a-b|). The result is in [0, 0.5] and symmetric
// in its arguments.
func Distance(a, b Key) float64 {
	d := math.Abs(float64(a) - float64(b))
	return math.Min(d, 1-d)
}

// Closer reports whether a is strictly closer to target than b.
// Equidistant keys favor neither side.
func Closer(a, b, target Key) bool {
	return Distance(a, target) < Distance(b, target)
}
