package locate

import "math"

// Point is a 2-D position in metres.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Measurements carries one synthesized ranging event: per-anchor distances,
// TDOAs relative to anchor 0, and a single bearing from anchor 0. The
// bearing is not consumed by the current estimators; it is kept so that an
// AoA-capable estimator can slot into the candidate list.
type Measurements struct {
	Distances []float64 // metres, index-aligned with the anchor set
	TDOAs     []float64 // seconds, length len(Distances)-1
	Bearing   float64   // radians
}

// Centroid returns the mean of the given points, or the origin for an empty
// set.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}
}

// maxCentroidRadius returns the largest anchor-to-centroid distance.
func maxCentroidRadius(anchors []Point, c Point) float64 {
	r := 0.0
	for _, a := range anchors {
		if d := c.Dist(a); d > r {
			r = d
		}
	}
	return r
}

// impliedDistances fills dst with the distances from p to every anchor.
func impliedDistances(p Point, anchors []Point, dst []float64) []float64 {
	if cap(dst) < len(anchors) {
		dst = make([]float64, len(anchors))
	}
	dst = dst[:len(anchors)]
	for i, a := range anchors {
		dst[i] = p.Dist(a)
	}
	return dst
}

// l2Deviation returns the L2 norm of the difference between the distances
// implied by p and the measured vector.
func l2Deviation(p Point, anchors []Point, measured []float64) float64 {
	var sum float64
	for i, a := range anchors {
		d := p.Dist(a) - measured[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// meanAbsDeviation returns the mean absolute implied-vs-measured distance
// deviation for p.
func meanAbsDeviation(p Point, anchors []Point, measured []float64) float64 {
	if len(anchors) == 0 {
		return 0
	}
	var sum float64
	for i, a := range anchors {
		sum += math.Abs(p.Dist(a) - measured[i])
	}
	return sum / float64(len(anchors))
}
