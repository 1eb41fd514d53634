package triallog

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndSummarize(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	defer db.Close()

	runID := uuid.NewString()
	require.NoError(t, db.RecordTrial(runID, 1, 5, 3, 5.01, 3.02, 0.022, 99.9))
	require.NoError(t, db.RecordTrial(runID, 2, 5, 3, 4.99, 2.99, 0.014, 99.9))
	require.NoError(t, db.RecordTrial(runID, 3, 5, 3, 5.03, 3.00, 0.030, 99.8))

	// A second run must not leak into the summary.
	require.NoError(t, db.RecordTrial(uuid.NewString(), 1, 0, 0, 9, 9, 12.7, 50))

	s, err := db.RunSummary(runID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Trials)
	assert.InDelta(t, 0.022, s.MeanError, 1e-9)
	assert.InDelta(t, 0.030, s.MaxError, 1e-9)
	assert.InDelta(t, 99.8666666, s.MeanQuality, 1e-6)
}

func TestRunSummaryEmpty(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	defer db.Close()

	s, err := db.RunSummary("missing")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Trials)
	assert.Zero(t, s.MeanError)
}
