// Package compliance scores observed link metrics against PCIe 6.x
// specification limits and reports violations with severity and section
// references. Section ids are opaque strings attached to violations; the
// scorer does not interpret them.
package compliance

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity of a violation. High means the observed value breached the limit
// by more than the severity multiplier.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Component names used in ComponentScores.
const (
	ComponentResetRecovery = "reset_recovery"
	ComponentLinkRetrain   = "link_retrain"
	ComponentErrorRate     = "error_rate"
	ComponentStability     = "stability"
)

// Violation records one breached specification limit.
type Violation struct {
	Severity      Severity `json:"severity"`
	Section       string   `json:"section"`
	Requirement   string   `json:"requirement"`
	Specification string   `json:"specification"`
	Actual        string   `json:"actual"`
}

// Report is the immutable outcome of one quality-assessment run. Score and
// component scores carry full precision; round only for display.
type Report struct {
	ID               string             `json:"id"`
	GeneratedAt      time.Time          `json:"generated_at"`
	OverallCompliant bool               `json:"overall_compliant"`
	Score            float64            `json:"compliance_score"`
	ComponentScores  map[string]float64 `json:"component_scores"`
	Violations       []Violation        `json:"violations"`
}

// HighViolations counts violations with high severity.
func (r *Report) HighViolations() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityHigh {
			n++
		}
	}
	return n
}

// Metrics are the observed values from a completed test run.
type Metrics struct {
	ResetRecoveryTimesMs []float64 `json:"reset_recovery_times"`
	RetrainTimesMs       []float64 `json:"retrain_times"`
	ErrorCounts          []uint64  `json:"error_counts"`
	LTSSMTransitions     []string  `json:"ltssm_transitions"`
}

// Thresholds hold the specification limits and the pass gate. Defaults are
// the documented PCIe 6.x values; config may override them.
type Thresholds struct {
	MaxResetRecoveryMs float64 `yaml:"max_reset_recovery_ms"`
	MaxRetrainMs       float64 `yaml:"max_retrain_ms"`
	MaxPortErrors      uint64  `yaml:"max_port_errors"`
	MaxRecoveryRatio   float64 `yaml:"max_recovery_ratio"`
	PassScore          float64 `yaml:"pass_score"`
	SeverityMultiplier float64 `yaml:"severity_multiplier"`
}

// DefaultThresholds returns the documented limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxResetRecoveryMs: 1000, // §6.6.1 conventional reset recovery
		MaxRetrainMs:       100,  // §4.2.5 link training completion
		MaxPortErrors:      10,   // §6.2 error signaling budget per port
		MaxRecoveryRatio:   0.2,  // §4.2.6 recovery re-entry rate
		PassScore:          80,
		SeverityMultiplier: 2.0,
	}
}

// sectionFor maps components to their specification section references.
var sectionFor = map[string]string{
	ComponentResetRecovery: "§6.6.1",
	ComponentLinkRetrain:   "§4.2.5",
	ComponentErrorRate:     "§6.2",
	ComponentStability:     "§4.2.6",
}

// Score evaluates metrics against the thresholds. A component with no
// observations is not scored. The overall result passes only when there are
// zero high-severity violations AND the score clears the pass gate; both
// checks are required.
func Score(m Metrics, th Thresholds) *Report {
	if th.PassScore == 0 {
		th = DefaultThresholds()
	}

	report := &Report{
		ID:              uuid.NewString(),
		GeneratedAt:     time.Now(),
		ComponentScores: make(map[string]float64),
		Violations:      []Violation{},
	}

	if len(m.ResetRecoveryTimesMs) > 0 {
		worst := maxFloat(m.ResetRecoveryTimesMs)
		report.addComponent(ComponentResetRecovery, worst, th.MaxResetRecoveryMs, th.SeverityMultiplier,
			"Reset recovery time", fmt.Sprintf("<= %.0f ms", th.MaxResetRecoveryMs), fmt.Sprintf("%.1f ms", worst))
	}

	if len(m.RetrainTimesMs) > 0 {
		worst := maxFloat(m.RetrainTimesMs)
		report.addComponent(ComponentLinkRetrain, worst, th.MaxRetrainMs, th.SeverityMultiplier,
			"Link retrain time", fmt.Sprintf("<= %.0f ms", th.MaxRetrainMs), fmt.Sprintf("%.1f ms", worst))
	}

	if len(m.ErrorCounts) > 0 {
		var worst uint64
		for _, c := range m.ErrorCounts {
			if c > worst {
				worst = c
			}
		}
		report.addComponent(ComponentErrorRate, float64(worst), float64(th.MaxPortErrors), th.SeverityMultiplier,
			"Per-port error count", fmt.Sprintf("<= %d errors", th.MaxPortErrors), fmt.Sprintf("%d errors", worst))
	}

	if len(m.LTSSMTransitions) > 0 {
		ratio := recoveryRatio(m.LTSSMTransitions)
		report.addComponent(ComponentStability, ratio, th.MaxRecoveryRatio, th.SeverityMultiplier,
			"LTSSM recovery re-entry rate", fmt.Sprintf("<= %.0f%% of transitions", th.MaxRecoveryRatio*100),
			fmt.Sprintf("%.1f%% of transitions", ratio*100))
	}

	total := 0.0
	for _, s := range report.ComponentScores {
		total += s
	}
	if len(report.ComponentScores) > 0 {
		report.Score = total / float64(len(report.ComponentScores))
	} else {
		report.Score = 100
	}

	report.OverallCompliant = report.HighViolations() == 0 && report.Score >= th.PassScore
	return report
}

// addComponent records the component score and, when the observed value
// exceeds the limit, the matching violation.
func (r *Report) addComponent(name string, observed, limit, multiplier float64, requirement, specText, actual string) {
	score := 100.0
	if observed > limit && observed > 0 {
		score = limit / observed * 100
	}
	r.ComponentScores[name] = score

	if observed <= limit {
		return
	}
	severity := SeverityMedium
	if multiplier > 0 && observed > limit*multiplier {
		severity = SeverityHigh
	}
	r.Violations = append(r.Violations, Violation{
		Severity:      severity,
		Section:       sectionFor[name],
		Requirement:   requirement,
		Specification: fmt.Sprintf("%s (PCIe 6.x %s)", specText, sectionFor[name]),
		Actual:        actual,
	})
}

// recoveryRatio returns the fraction of LTSSM transitions that enter the
// Recovery state.
func recoveryRatio(transitions []string) float64 {
	entries := 0
	for _, t := range transitions {
		parts := strings.SplitN(t, "->", 2)
		if len(parts) == 2 && strings.Contains(strings.ToLower(parts[1]), "recovery") {
			entries++
		}
	}
	return float64(entries) / float64(len(transitions))
}

// Round1 rounds a percentage to one decimal place for display. Internal
// aggregation keeps full precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func maxFloat(vals []float64) float64 {
	worst := vals[0]
	for _, v := range vals[1:] {
		if v > worst {
			worst = v
		}
	}
	return worst
}
