package locate

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// refine runs an unconstrained nonlinear least-squares pass over the range
// residuals, seeded at start. On any optimizer failure the seed is returned
// unchanged. The result is clamped to the anchor bounding box plus
// RefineMarginM per axis and blended RefineBlend/1-RefineBlend with the
// seed.
func refine(start Point, anchors []Point, measured []float64) Point {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := Point{X: x[0], Y: x[1]}
			var sum float64
			for i, a := range anchors {
				r := p.Dist(a) - measured[i]
				sum += r * r
			}
			return sum
		},
	}
	settings := &optimize.Settings{
		MajorIterations: RefineMaxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   RefineTol,
			Iterations: 50,
		},
	}

	refined := start
	result, err := optimize.Minimize(problem, []float64{start.X, start.Y}, settings, nil)
	if err == nil && result != nil && len(result.X) == 2 &&
		!math.IsNaN(result.X[0]) && !math.IsNaN(result.X[1]) {
		refined = Point{X: result.X[0], Y: result.X[1]}
	}

	minX, maxX := anchors[0].X, anchors[0].X
	minY, maxY := anchors[0].Y, anchors[0].Y
	for _, a := range anchors[1:] {
		minX = math.Min(minX, a.X)
		maxX = math.Max(maxX, a.X)
		minY = math.Min(minY, a.Y)
		maxY = math.Max(maxY, a.Y)
	}
	refined.X = clamp(refined.X, minX-RefineMarginM, maxX+RefineMarginM)
	refined.Y = clamp(refined.Y, minY-RefineMarginM, maxY+RefineMarginM)

	return Point{
		X: RefineBlend*refined.X + (1-RefineBlend)*start.X,
		Y: RefineBlend*refined.Y + (1-RefineBlend)*start.Y,
	}
}
