package ownercover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konman95/mainst.ai/internal/models"
)

func clock(hour, minute int) time.Time {
	return time.Date(2025, 6, 14, hour, minute, 0, 0, time.UTC)
}

func autoSettings() models.OwnerCoverSettings {
	return models.OwnerCoverSettings{
		Mode:                models.ModeAuto,
		ConfidenceThreshold: 0.85,
		RestrictedTopics:    []string{"billing"},
		QuietHoursStart:     "20:00",
		QuietHoursEnd:       "07:00",
		QuietHoursEnabled:   false,
	}
}

func TestEvaluate_ModeOffAlwaysMonitors(t *testing.T) {
	e := NewEvaluator(nil)
	s := autoSettings()
	s.Mode = models.ModeOff
	s.QuietHoursEnabled = true

	for _, text := range []string{"", "What are your hours?", "BILLING dispute", "legal"} {
		for _, now := range []time.Time{clock(0, 0), clock(12, 0), clock(23, 30)} {
			d := e.Evaluate(s, text, now)
			assert.Equal(t, models.DecisionMonitor, d.Action, "text=%q now=%s", text, now.Format("15:04"))
		}
	}
}

func TestEvaluate_ModeMonitorAlwaysAwaitsApproval(t *testing.T) {
	e := NewEvaluator(nil)
	s := autoSettings()
	s.Mode = models.ModeMonitor
	s.ConfidenceThreshold = 0

	for _, text := range []string{"", "What are your hours?", "billing"} {
		d := e.Evaluate(s, text, clock(12, 0))
		assert.Equal(t, models.DecisionAwaitApproval, d.Action, "text=%q", text)
	}
}

func TestEvaluate_AutoMode(t *testing.T) {
	e := NewEvaluator(nil)

	tests := []struct {
		name           string
		text           string
		wantAction     string
		wantConfidence float64
		wantRestricted bool
	}{
		{"restricted lower case", "question about billing", models.DecisionAwaitApproval, 0.6, true},
		{"restricted mixed case", "My BiLLiNg is wrong", models.DecisionAwaitApproval, 0.6, true},
		{"restricted inside longer word", "you are overbilling me", models.DecisionAwaitApproval, 0.6, true},
		{"clear question", "What are your hours?", models.DecisionAutoSend, 0.9, false},
		{"empty text", "", models.DecisionAutoSend, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(autoSettings(), tt.text, clock(12, 0))
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantConfidence, d.Confidence)
			assert.Equal(t, tt.wantRestricted, d.Restricted)
			assert.False(t, d.QuietHours)
		})
	}
}

func TestEvaluate_ThresholdBoundaryIsInclusive(t *testing.T) {
	e := NewEvaluator(nil)
	s := autoSettings()
	s.ConfidenceThreshold = ClearConfidence

	d := e.Evaluate(s, "Do you work weekends?", clock(12, 0))
	assert.Equal(t, models.DecisionAutoSend, d.Action)

	s.ConfidenceThreshold = 0.95
	d = e.Evaluate(s, "Do you work weekends?", clock(12, 0))
	assert.Equal(t, models.DecisionAwaitApproval, d.Action)
	assert.Equal(t, ReasonLowConfidence, Reason(s, d))
}

func TestEvaluate_QuietHoursForceApproval(t *testing.T) {
	e := NewEvaluator(nil)
	s := autoSettings()
	s.QuietHoursEnabled = true

	d := e.Evaluate(s, "What are your hours?", clock(23, 30))
	assert.Equal(t, models.DecisionAwaitApproval, d.Action)
	assert.True(t, d.QuietHours)
	assert.True(t, d.Restricted, "quiet hours fold into restricted")
	assert.Equal(t, 0.9, d.Confidence, "quiet hours do not lower confidence")
	assert.Equal(t, ReasonRestricted, Reason(s, d))
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	e := NewEvaluator(nil)
	s := autoSettings()
	s.QuietHoursEnabled = true
	now := clock(6, 59)

	first := e.Evaluate(s, "billing question", now)
	second := e.Evaluate(s, "billing question", now)
	assert.Equal(t, first, second)
}

func TestEvaluate_InvariantHoldsAcrossInputs(t *testing.T) {
	e := NewEvaluator(nil)
	modes := []string{models.ModeOff, models.ModeMonitor, models.ModeAuto, "unknown"}
	thresholds := []float64{0, 0.6, 0.85, 0.9, 1}
	texts := []string{"", "hello", "billing", "legal advice"}
	times := []time.Time{clock(3, 0), clock(12, 0), clock(21, 0)}

	for _, mode := range modes {
		for _, threshold := range thresholds {
			for _, quiet := range []bool{false, true} {
				s := models.OwnerCoverSettings{
					Mode:                mode,
					ConfidenceThreshold: threshold,
					RestrictedTopics:    []string{"billing", "legal"},
					QuietHoursStart:     "20:00",
					QuietHoursEnd:       "07:00",
					QuietHoursEnabled:   quiet,
				}
				for _, text := range texts {
					for _, now := range times {
						d := e.Evaluate(s, text, now)
						switch d.Action {
						case models.DecisionAutoSend:
							require.Equal(t, models.ModeAuto, mode)
							require.GreaterOrEqual(t, d.Confidence, threshold)
							require.False(t, d.Restricted)
							require.False(t, d.QuietHours)
						case models.DecisionMonitor:
							require.Equal(t, models.ModeOff, mode)
						default:
							require.Equal(t, models.DecisionAwaitApproval, d.Action)
						}
					}
				}
			}
		}
	}
}

type fixedScorer float64

func (f fixedScorer) Score(string, bool) float64 { return float64(f) }

func TestEvaluate_UsesInjectedScorer(t *testing.T) {
	e := NewEvaluator(fixedScorer(0.5))
	d := e.Evaluate(autoSettings(), "What are your hours?", clock(12, 0))
	assert.Equal(t, 0.5, d.Confidence)
	assert.Equal(t, models.DecisionAwaitApproval, d.Action)
}

func TestReason(t *testing.T) {
	s := autoSettings()

	tests := []struct {
		name     string
		decision models.Decision
		want     string
	}{
		{"restricted", models.Decision{Confidence: 0.6, Restricted: true}, ReasonRestricted},
		{"restricted wins over low confidence", models.Decision{Confidence: 0.1, Restricted: true}, ReasonRestricted},
		{"low confidence", models.Decision{Confidence: 0.8}, ReasonLowConfidence},
		{"at threshold", models.Decision{Confidence: 0.85}, ReasonWithinGuardrails},
		{"clear", models.Decision{Confidence: 0.9}, ReasonWithinGuardrails},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(s, tt.decision))
		})
	}
}

func TestMatchesRestrictedTopic(t *testing.T) {
	assert.True(t, MatchesRestrictedTopic([]string{"legal"}, "Need LEGAL help"))
	assert.False(t, MatchesRestrictedTopic([]string{"legal"}, "nothing to see"))
	assert.False(t, MatchesRestrictedTopic(nil, "billing"))
}
