package locate

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// synthesize builds one noisy Measurements set for truePos against the
// anchor set. Per-anchor range noise is the sum of a thermal draw, a
// half-normal multipath delay, and a clock-drift draw, all expressed in
// metres of equivalent time-of-flight error. TDOAs are the noisy ToA of
// each non-reference anchor minus the reference anchor's.
func (e *Engine) synthesize(truePos Point, anchors []Point, noiseLevel, multipathFactor float64) Measurements {
	thermalSigma := noiseLevel
	multipathSigma := multipathFactor
	clockSigma := ClockDriftFrac * noiseLevel
	if e.cfg.ForceHighPrecision {
		thermalSigma = PrecisionThermalSigma
		multipathSigma = PrecisionMultipathSigma
		clockSigma = PrecisionClockSigma
	}

	thermal := distuv.Normal{Mu: 0, Sigma: thermalSigma, Src: e.src}
	multipath := distuv.Normal{Mu: 0, Sigma: multipathSigma, Src: e.src}
	clock := distuv.Normal{Mu: 0, Sigma: clockSigma, Src: e.src}
	angular := distuv.Normal{Mu: 0, Sigma: BearingSigma, Src: e.src}

	m := Measurements{
		Distances: make([]float64, len(anchors)),
		TDOAs:     make([]float64, 0, len(anchors)-1),
	}
	toas := make([]float64, len(anchors))
	for i, a := range anchors {
		d := truePos.Dist(a)
		rangeNoise := sample(thermal) + math.Abs(sample(multipath)) + sample(clock)
		noisy := d + rangeNoise
		if noisy < 0 {
			noisy = 0
		}
		m.Distances[i] = noisy
		toas[i] = noisy / PropagationSpeed
	}
	for i := 1; i < len(toas); i++ {
		m.TDOAs = append(m.TDOAs, toas[i]-toas[0])
	}
	if len(anchors) > 0 {
		m.Bearing = math.Atan2(truePos.Y-anchors[0].Y, truePos.X-anchors[0].X) + sample(angular)
	}
	return m
}

// sample draws from n, treating a zero sigma as a deterministic zero draw so
// callers can force noise off.
func sample(n distuv.Normal) float64 {
	if n.Sigma <= 0 {
		return n.Mu
	}
	return n.Rand()
}
