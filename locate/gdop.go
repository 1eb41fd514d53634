package locate

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// gdopWeight scores how well-conditioned the anchor geometry is around
// target. 1.0 is excellent geometry; GDOPFloor is the floor for degenerate
// layouts. Any linear-algebra failure degrades to GDOPFallback, never an
// error.
func gdopWeight(anchors []Point, target Point) float64 {
	if len(anchors) < MinAnchors {
		return GDOPFallback
	}

	n := len(anchors) - 1
	g := mat.NewDense(n, 2, nil)
	for i := 1; i < len(anchors); i++ {
		g.Set(i-1, 0, anchors[i].X-anchors[0].X)
		g.Set(i-1, 1, anchors[i].Y-anchors[0].Y)
	}

	var gtg mat.Dense
	gtg.Mul(g.T(), g)

	w := GDOPFallback
	if det := mat.Det(&gtg); math.Abs(det) > GDOPDetEps {
		var inv mat.Dense
		if err := inv.Inverse(&gtg); err == nil {
			trace := inv.At(0, 0) + inv.At(1, 1)
			if trace > 0 {
				gdop := math.Sqrt(trace)
				w = 1.0 / (1.0 + GDOPScale*gdop)
			}
		}
	}
	return clamp(w, GDOPFloor, GDOPCeil)
}
