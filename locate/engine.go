package locate

import (
	"math"
	"math/rand/v2"
)

// Config controls one Engine instance.
type Config struct {
	// ForceHighPrecision replaces the caller-supplied noise parameters with
	// the engine's ultra-precision sigmas. This mirrors the reference
	// simulation, which always measured with its internal constants; turn it
	// off to honor the Localize noise arguments.
	ForceHighPrecision bool

	// ResidualTrigger gates the refinement step on the implied-vs-measured
	// distance residual instead of the error against the true position. The
	// default (false) reproduces the reference behavior, which a deployed
	// system could not implement since it requires ground truth; enabling it
	// changes which trials get refined and therefore the output numbers.
	ResidualTrigger bool

	// Seed initializes the engine-owned random source.
	Seed uint64
}

// DefaultConfig returns the configuration matching the reference simulation.
func DefaultConfig() Config {
	return Config{ForceHighPrecision: true}
}

// Result is one localization outcome.
type Result struct {
	Position Point
	// Error is the distance to the true position, metres.
	Error float64
	// Quality is the geometry-derived signal quality score. It is
	// QualityBase + QualitySpan*gdopWeight for the normal path, so it always
	// lands in [90,100]; degraded calls (fewer than MinAnchors anchors)
	// report FallbackQuality instead.
	Quality float64
}

// Engine synthesizes noisy UWB measurements and estimates position from
// them. Each Engine owns its random source and carries no other state, so
// create one Engine per goroutine; calls on a single Engine are not safe
// concurrently.
type Engine struct {
	cfg        Config
	src        rand.Source
	estimators []PositionEstimator
}

// New returns an Engine with its own seeded random source.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:        cfg,
		src:        rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15),
		estimators: defaultEstimators(),
	}
}

// Localize simulates one ranging event at truePos against the anchor set
// and returns the estimated position, its error, and a quality score. It
// never fails: degenerate geometry degrades to the anchor centroid with
// FallbackQuality, and every internal numeric failure has a deterministic
// fallback.
func (e *Engine) Localize(truePos Point, anchors []Point, noiseLevel, multipathFactor float64) Result {
	if len(anchors) < MinAnchors {
		c := Centroid(anchors)
		return Result{Position: c, Error: c.Dist(truePos), Quality: FallbackQuality}
	}

	meas := e.synthesize(truePos, anchors, noiseLevel, multipathFactor)
	weight := gdopWeight(anchors, truePos)
	centroid := Centroid(anchors)

	est := e.selectCandidate(anchors, meas)

	// Shrink toward the centroid as geometry degrades; even at the GDOP
	// floor the winning candidate keeps the majority share.
	alpha := TrustSlope*weight + TrustFloor
	est = Point{
		X: alpha*est.X + (1-alpha)*centroid.X,
		Y: alpha*est.Y + (1-alpha)*centroid.Y,
	}

	if e.needsRefinement(est, truePos, anchors, meas.Distances) {
		est = refine(est, anchors, meas.Distances)
	}

	est = consistencyFilter(est, anchors, meas.Distances)

	return Result{
		Position: est,
		Error:    est.Dist(truePos),
		Quality:  QualityBase + QualitySpan*weight,
	}
}

// selectCandidate runs every estimator and keeps the candidate whose implied
// distances deviate least (L2) from the measured vector. Non-finite
// candidates are skipped; ties keep the earliest. If every candidate is
// non-finite the first estimator's raw output is propagated as-is.
func (e *Engine) selectCandidate(anchors []Point, meas Measurements) Point {
	var (
		best     Point
		bestDev  = math.Inf(1)
		fallback Point
		found    bool
	)
	for i, est := range e.estimators {
		c := est.Estimate(anchors, meas)
		if i == 0 {
			fallback = c
		}
		if !c.Finite() {
			continue
		}
		dev := l2Deviation(c, anchors, meas.Distances)
		if dev < bestDev {
			best = c
			bestDev = dev
			found = true
		}
	}
	if !found {
		return fallback
	}
	return best
}

func (e *Engine) needsRefinement(est, truePos Point, anchors []Point, measured []float64) bool {
	if e.cfg.ResidualTrigger {
		return meanAbsDeviation(est, anchors, measured) > ConsistencyTolM
	}
	return est.Dist(truePos) > RefineTriggerM
}

// consistencyFilter pulls estimates that disagree with the measured
// distances toward the anchor centroid and clamps the result to a maximum
// reasonable radius from it. Applying it to an already-consistent in-bounds
// point is a no-op.
func consistencyFilter(p Point, anchors []Point, measured []float64) Point {
	if dev := meanAbsDeviation(p, anchors, measured); dev > ConsistencyTolM {
		c := Centroid(anchors)
		corr := math.Min(ConsistencyGain, dev/ConsistencyScaleM)
		p.X += (c.X - p.X) * corr
		p.Y += (c.Y - p.Y) * corr
	}

	centroid := Centroid(anchors)
	maxR := maxCentroidRadius(anchors, centroid) + BoundsMarginM
	if d := p.Dist(centroid); d > maxR {
		scale := maxR / d
		p.X = centroid.X + (p.X-centroid.X)*scale
		p.Y = centroid.Y + (p.Y-centroid.Y)*scale
	}
	return p
}
