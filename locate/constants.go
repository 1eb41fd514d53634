package locate

// Engine tuning constants. Values mirror the reference simulation.
const (
	// PropagationSpeed is the UWB signal propagation speed in m/s.
	PropagationSpeed = 3.0e8

	// MinAnchors is the minimum anchor count for any closed-form solve.
	MinAnchors = 3

	// Ultra-precision sigmas applied when Config.ForceHighPrecision is set,
	// regardless of the caller-supplied noise parameters. All in metres of
	// equivalent range error.
	PrecisionThermalSigma   = 0.005
	PrecisionMultipathSigma = 0.0025
	PrecisionClockSigma     = 0.001

	// ClockDriftFrac scales the thermal sigma into a clock-drift sigma when
	// the precision override is disabled.
	ClockDriftFrac = 0.2

	// BearingSigma is the angular noise on the anchor-0 bearing, radians.
	BearingSigma = 0.01

	// GDOP weight bounds and fallbacks.
	GDOPFloor    = 0.7
	GDOPCeil     = 1.0
	GDOPFallback = 0.8
	GDOPDetEps   = 1e-12
	GDOPScale    = 0.01

	// Centroid blending: trust = TrustSlope*weight + TrustFloor.
	TrustSlope = 0.98
	TrustFloor = 0.02

	// Refinement.
	RefineTriggerM = 0.05
	RefineTol      = 1e-15
	RefineMaxIter  = 1000
	RefineMarginM  = 2.0
	RefineBlend    = 0.8

	// Consistency filter.
	ConsistencyTolM   = 0.02
	ConsistencyGain   = 0.1
	ConsistencyScaleM = 0.5
	BoundsMarginM     = 5.0

	// WLSEps regularizes the inverse-cube distance weights.
	WLSEps = 1e-9

	// Quality reporting. The 90..100 band is a property of the reference
	// model (quality = QualityBase + QualitySpan*weight); it tracks anchor
	// geometry only, not any received-signal metric.
	QualityBase     = 90.0
	QualitySpan     = 10.0
	FallbackQuality = 50.0
)

// clamp returns x within [min, max].
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
