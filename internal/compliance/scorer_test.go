package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCleanRunIsCompliant(t *testing.T) {
	report := Score(Metrics{
		ResetRecoveryTimesMs: []float64{250, 310},
		RetrainTimesMs:       []float64{40, 55},
		ErrorCounts:          []uint64{0, 2},
		LTSSMTransitions:     []string{"Detect->Polling", "Polling->Configuration", "Configuration->L0"},
	}, DefaultThresholds())

	assert.True(t, report.OverallCompliant)
	assert.Equal(t, 100.0, report.Score)
	assert.Empty(t, report.Violations)
	require.Len(t, report.ComponentScores, 4)
	for name, s := range report.ComponentScores {
		assert.Equal(t, 100.0, s, "component %s", name)
	}
	assert.NotEmpty(t, report.ID)
}

func TestScoreSeverityByBreachMultiplier(t *testing.T) {
	th := DefaultThresholds()

	// 150 ms retrain: over the 100 ms limit but under 2x -> medium.
	report := Score(Metrics{RetrainTimesMs: []float64{150}}, th)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, SeverityMedium, report.Violations[0].Severity)
	assert.Equal(t, "§4.2.5", report.Violations[0].Section)

	// 250 ms: over 2x the limit -> high.
	report = Score(Metrics{RetrainTimesMs: []float64{250}}, th)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, SeverityHigh, report.Violations[0].Severity)
}

func TestScoreOverallRequiresBothConjuncts(t *testing.T) {
	th := DefaultThresholds()

	// High violation with otherwise perfect components: score stays above
	// the gate but the high violation alone fails the run.
	report := Score(Metrics{
		ResetRecoveryTimesMs: []float64{100},
		RetrainTimesMs:       []float64{100},
		ErrorCounts:          []uint64{25}, // > 2x the 10-error budget
	}, th)
	assert.False(t, report.OverallCompliant)
	assert.Equal(t, 1, report.HighViolations())

	// No high violations but score below the gate also fails.
	report = Score(Metrics{
		RetrainTimesMs: []float64{199}, // medium violation, score ~50
		ErrorCounts:    []uint64{19},   // medium violation
	}, th)
	assert.Zero(t, report.HighViolations())
	assert.Less(t, report.Score, th.PassScore)
	assert.False(t, report.OverallCompliant)
}

func TestScorePassFailBoundary(t *testing.T) {
	clean := Score(Metrics{RetrainTimesMs: []float64{10}}, DefaultThresholds())
	assert.True(t, clean.OverallCompliant)
	assert.Equal(t, 100.0, clean.Score)

	// Same perfect retrain component plus one high-severity breach in a
	// different category flips the overall result.
	dirty := Score(Metrics{
		RetrainTimesMs:       []float64{10},
		ResetRecoveryTimesMs: []float64{2500},
	}, DefaultThresholds())
	assert.Equal(t, 100.0, dirty.ComponentScores[ComponentLinkRetrain])
	assert.Equal(t, 1, dirty.HighViolations())
	assert.False(t, dirty.OverallCompliant)
}

func TestRecoveryRatioComponent(t *testing.T) {
	report := Score(Metrics{LTSSMTransitions: []string{
		"L0->Recovery",
		"Recovery->L0",
		"L0->Recovery",
		"Recovery->L0",
	}}, DefaultThresholds())

	// Half the transitions enter Recovery against a 20% budget.
	require.Len(t, report.Violations, 1)
	assert.Equal(t, SeverityHigh, report.Violations[0].Severity)
	assert.InDelta(t, 40.0, report.ComponentScores[ComponentStability], 0.01)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, Round1(66.66666))
	assert.Equal(t, 100.0, Round1(100))
}

func TestScoreNoMetrics(t *testing.T) {
	report := Score(Metrics{}, DefaultThresholds())
	assert.True(t, report.OverallCompliant)
	assert.Empty(t, report.ComponentScores)
}
