package pack

import "math"

// DefaultRadius is the basket ring radius used when config supplies none.
const DefaultRadius = 0.8

// ArrangementPoint places one selected item on the basket ring. Derived
// only, never stored; recomputed from (index, count) on every change.
type ArrangementPoint struct {
	ItemIndex int
	X, Y, Z   float64
}

// Arrange distributes n items evenly on a horizontal ring of the given
// radius centered on the basket anchor. Pure function of (n, radius):
// point i sits at angle i*2π/n on the y=0 plane. n <= 0 yields nil;
// radius <= 0 falls back to DefaultRadius.
func Arrange(n int, radius float64) []ArrangementPoint {
	if n <= 0 {
		return nil
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	step := 2 * math.Pi / float64(n)
	points := make([]ArrangementPoint, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * step
		points[i] = ArrangementPoint{
			ItemIndex: i,
			X:         radius * math.Cos(angle),
			Z:         radius * math.Sin(angle),
		}
	}
	return points
}
