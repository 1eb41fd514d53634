package locate

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PositionEstimator is one candidate positioning strategy. Implementations
// must degrade gracefully: ill-conditioned input yields a closed-form or
// centroid fallback, never a panic or error.
type PositionEstimator interface {
	Name() string
	Estimate(anchors []Point, meas Measurements) Point
}

// defaultEstimators returns the candidate strategies in selection order.
// The order is load-bearing: ties in candidate selection resolve to the
// earliest entry, and the first entry's raw output is the last resort when
// every candidate is non-finite.
func defaultEstimators() []PositionEstimator {
	return []PositionEstimator{
		wlsEstimator{},
		tdoaEstimator{},
		circleEstimator{},
	}
}

// wlsEstimator solves the linearized trilateration system over all anchors
// with inverse-cube distance weights, favoring near anchors.
type wlsEstimator struct{}

func (wlsEstimator) Name() string { return "wls" }

func (wlsEstimator) Estimate(anchors []Point, meas Measurements) Point {
	dists := meas.Distances
	if len(anchors) < MinAnchors || len(dists) < len(anchors) {
		return Centroid(anchors)
	}

	// Subtract anchor 0's squared-distance equation from every other row:
	// 2(ai-a0)·p = ‖ai‖² - ‖a0‖² + d0² - di²
	n := len(anchors) - 1
	a := mat.NewDense(n, 2, nil)
	b := mat.NewVecDense(n, nil)
	w := mat.NewDiagDense(n, nil)
	a0 := anchors[0]
	d0sq := dists[0] * dists[0]
	norm0 := a0.X*a0.X + a0.Y*a0.Y
	for i := 1; i < len(anchors); i++ {
		ai := anchors[i]
		a.Set(i-1, 0, 2*(ai.X-a0.X))
		a.Set(i-1, 1, 2*(ai.Y-a0.Y))
		b.SetVec(i-1, ai.X*ai.X+ai.Y*ai.Y-norm0+d0sq-dists[i]*dists[i])
		w.SetDiag(i-1, 1.0/(dists[i]*dists[i]*dists[i]+WLSEps))
	}

	// Weighted normal equations: (AᵀWA) p = AᵀWb.
	var awa mat.Dense
	awa.Product(a.T(), w, a)
	var awb mat.VecDense
	var wb mat.VecDense
	wb.MulVec(w, b)
	awb.MulVec(a.T(), &wb)

	if math.Abs(mat.Det(&awa)) <= GDOPDetEps {
		return trilaterate3(anchors, dists)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(&awa, &awb); err != nil {
		return trilaterate3(anchors, dists)
	}
	return Point{X: sol.AtVec(0), Y: sol.AtVec(1)}
}

// tdoaEstimator positions from the first up-to-3 range-difference equations
// (range difference = TDOA × propagation speed) via QR least squares.
type tdoaEstimator struct{}

func (tdoaEstimator) Name() string { return "tdoa" }

func (tdoaEstimator) Estimate(anchors []Point, meas Measurements) Point {
	// Each range difference couples the position to the unknown reference
	// range d0: 2(ai-a0)·p + 2·dri·d0 = ‖ai‖² - ‖a0‖² - dri². Solving for
	// (x, y, d0) needs three equations; fewer leaves the system
	// underdetermined and degrades to the centroid.
	rows := len(meas.TDOAs)
	if rows > 3 {
		rows = 3
	}
	if len(anchors) < rows+1 {
		rows = len(anchors) - 1
	}
	if rows < 3 {
		return Centroid(anchors)
	}

	a0 := anchors[0]
	norm0 := a0.X*a0.X + a0.Y*a0.Y
	a := mat.NewDense(rows, 3, nil)
	b := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		ai := anchors[i+1]
		dr := meas.TDOAs[i] * PropagationSpeed
		a.Set(i, 0, 2*(ai.X-a0.X))
		a.Set(i, 1, 2*(ai.Y-a0.Y))
		a.Set(i, 2, 2*dr)
		b.SetVec(i, ai.X*ai.X+ai.Y*ai.Y-norm0-dr*dr)
	}

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return Centroid(anchors)
	}
	return Point{X: sol.AtVec(0), Y: sol.AtVec(1)}
}

// circleEstimator intersects the first two range circles along their radical
// line and keeps whichever intersection agrees best with the third circle.
type circleEstimator struct{}

func (circleEstimator) Name() string { return "circle" }

func (circleEstimator) Estimate(anchors []Point, meas Measurements) Point {
	dists := meas.Distances
	if len(anchors) < MinAnchors || len(dists) < MinAnchors {
		return Centroid(anchors)
	}
	p1, p2, p3 := anchors[0], anchors[1], anchors[2]
	r1, r2, r3 := dists[0], dists[1], dists[2]

	d := p1.Dist(p2)
	if d < 1e-9 || d > r1+r2 || d < math.Abs(r1-r2) {
		return trilaterate3(anchors, dists)
	}

	// Radical line offset from p1 along p1->p2, then the two candidates at
	// height h off that axis.
	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h2 := r1*r1 - a*a
	if h2 < 0 {
		return trilaterate3(anchors, dists)
	}
	h := math.Sqrt(h2)
	ex := (p2.X - p1.X) / d
	ey := (p2.Y - p1.Y) / d
	mx := p1.X + a*ex
	my := p1.Y + a*ey
	c1 := Point{X: mx + h*ey, Y: my - h*ex}
	c2 := Point{X: mx - h*ey, Y: my + h*ex}

	if math.Abs(c1.Dist(p3)-r3) <= math.Abs(c2.Dist(p3)-r3) {
		return c1
	}
	return c2
}

// trilaterate3 is the shared closed-form solve over the first three
// anchor/distance pairs. A singular 2x2 system degrades to the centroid.
func trilaterate3(anchors []Point, dists []float64) Point {
	if len(anchors) < MinAnchors || len(dists) < MinAnchors {
		return Centroid(anchors)
	}
	p1, p2, p3 := anchors[0], anchors[1], anchors[2]
	r1, r2, r3 := dists[0], dists[1], dists[2]

	a11 := 2 * (p2.X - p1.X)
	a12 := 2 * (p2.Y - p1.Y)
	a21 := 2 * (p3.X - p1.X)
	a22 := 2 * (p3.Y - p1.Y)
	b1 := r1*r1 - r2*r2 + p2.X*p2.X - p1.X*p1.X + p2.Y*p2.Y - p1.Y*p1.Y
	b2 := r1*r1 - r3*r3 + p3.X*p3.X - p1.X*p1.X + p3.Y*p3.Y - p1.Y*p1.Y

	det := a11*a22 - a12*a21
	if math.Abs(det) <= GDOPDetEps {
		return Centroid(anchors)
	}
	return Point{
		X: (b1*a22 - b2*a12) / det,
		Y: (a11*b2 - a21*b1) / det,
	}
}
