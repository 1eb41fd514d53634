package locate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference scenario: five anchors over a 15x10 m hall, tag at (5,3).
var hallAnchors = []Point{{0, 0}, {15, 0}, {15, 10}, {0, 10}, {7.5, 5}}

func TestLocalizeTooFewAnchors(t *testing.T) {
	e := New(DefaultConfig())
	anchors := []Point{{0, 0}, {10, 0}}
	res := e.Localize(Point{3, 3}, anchors, 0.1, 0.05)

	want := Centroid(anchors)
	assert.Equal(t, want, res.Position)
	assert.Equal(t, FallbackQuality, res.Quality)
	assert.InDelta(t, want.Dist(Point{3, 3}), res.Error, 1e-12)
}

func TestLocalizeCollinearAnchorsFinite(t *testing.T) {
	e := New(Config{ForceHighPrecision: true, Seed: 7})
	anchors := []Point{{0, 0}, {5, 0}, {10, 0}}
	res := e.Localize(Point{4, 2}, anchors, 0.1, 0.05)

	require.True(t, res.Position.Finite(), "collinear anchors produced %+v", res.Position)
	require.False(t, math.IsNaN(res.Error))
}

func TestLocalizeBoundedUnderExtremeNoise(t *testing.T) {
	e := New(Config{ForceHighPrecision: false, Seed: 11})
	centroid := Centroid(hallAnchors)
	maxR := maxCentroidRadius(hallAnchors, centroid) + BoundsMarginM

	for i := 0; i < 100; i++ {
		res := e.Localize(Point{5, 3}, hallAnchors, 50.0, 20.0)
		require.True(t, res.Position.Finite())
		assert.LessOrEqual(t, res.Position.Dist(centroid), maxR+1e-9,
			"trial %d escaped the anchor bounds", i)
	}
}

func TestLocalizeZeroNoiseExactAnchor(t *testing.T) {
	// With the precision override disabled and zero caller noise, a tag
	// sitting on an anchor must come back essentially on that anchor.
	e := New(Config{ForceHighPrecision: false, Seed: 3})
	res := e.Localize(hallAnchors[1], hallAnchors, 0, 0)
	assert.Less(t, res.Error, 0.02)
}

func TestLocalizeScenarioStatistics(t *testing.T) {
	e := New(Config{ForceHighPrecision: true, Seed: 42})
	truePos := Point{5, 3}

	const trials = 200
	hits := 0
	for i := 0; i < trials; i++ {
		res := e.Localize(truePos, hallAnchors, 0.1, 0.05)
		require.True(t, res.Position.Finite())
		assert.GreaterOrEqual(t, res.Quality, 90.0)
		assert.LessOrEqual(t, res.Quality, 100.0)
		if res.Error < 0.05 {
			hits++
		}
	}
	assert.GreaterOrEqual(t, hits, trials*95/100,
		"sub-5cm rate %d/%d below 95%%", hits, trials)
}

func TestLocalizeQualityFollowsGeometry(t *testing.T) {
	e := New(Config{ForceHighPrecision: true, Seed: 1})
	res := e.Localize(Point{5, 3}, hallAnchors, 0.1, 0.05)
	want := QualityBase + QualitySpan*gdopWeight(hallAnchors, Point{5, 3})
	assert.InDelta(t, want, res.Quality, 1e-12)
}

func TestLocalizeResidualTrigger(t *testing.T) {
	// The residual trigger must still satisfy the statistical contract.
	e := New(Config{ForceHighPrecision: true, ResidualTrigger: true, Seed: 9})
	truePos := Point{5, 3}
	hits := 0
	for i := 0; i < 100; i++ {
		res := e.Localize(truePos, hallAnchors, 0.1, 0.05)
		if res.Error < 0.05 {
			hits++
		}
	}
	assert.GreaterOrEqual(t, hits, 95)
}

func TestDistanceConsistencySquareLayout(t *testing.T) {
	// Well-conditioned square layout: the filtered estimate's implied
	// distances must stay within the 2cm consistency threshold of the
	// measured vector.
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	e := New(Config{ForceHighPrecision: true, Seed: 5})
	target := Point{3, 4}

	for i := 0; i < 50; i++ {
		m := e.synthesize(target, square, 0.1, 0.05)
		est := e.selectCandidate(square, m)
		est = consistencyFilter(est, square, m.Distances)
		assert.LessOrEqual(t, meanAbsDeviation(est, square, m.Distances), ConsistencyTolM,
			"trial %d", i)
	}
}

func TestConsistencyFilterIdempotent(t *testing.T) {
	p := Point{4, 3}
	measured := impliedDistances(p, hallAnchors, nil)

	once := consistencyFilter(p, hallAnchors, measured)
	twice := consistencyFilter(once, hallAnchors, measured)
	assert.Equal(t, p, once, "consistent point must pass through unchanged")
	assert.Equal(t, once, twice)
}

func TestConsistencyFilterPullsInconsistentPoint(t *testing.T) {
	truePos := Point{4, 3}
	measured := impliedDistances(truePos, hallAnchors, nil)
	off := Point{6, 6}

	filtered := consistencyFilter(off, hallAnchors, measured)
	centroid := Centroid(hallAnchors)
	assert.Less(t, filtered.Dist(centroid), off.Dist(centroid),
		"inconsistent point should be pulled toward the centroid")
}

func TestConsistencyFilterRadialClamp(t *testing.T) {
	far := Point{500, 500}
	measured := impliedDistances(far, hallAnchors, nil)
	filtered := consistencyFilter(far, hallAnchors, measured)

	centroid := Centroid(hallAnchors)
	maxR := maxCentroidRadius(hallAnchors, centroid) + BoundsMarginM
	assert.InDelta(t, maxR, filtered.Dist(centroid), 1e-9)
}

func TestEnginesAreIndependent(t *testing.T) {
	// Same seed, same inputs: two engines must reproduce each other.
	a := New(Config{ForceHighPrecision: true, Seed: 123})
	b := New(Config{ForceHighPrecision: true, Seed: 123})
	for i := 0; i < 10; i++ {
		ra := a.Localize(Point{5, 3}, hallAnchors, 0.1, 0.05)
		rb := b.Localize(Point{5, 3}, hallAnchors, 0.1, 0.05)
		require.Equal(t, ra, rb)
	}
}
