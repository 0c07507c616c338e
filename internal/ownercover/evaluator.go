package ownercover

import (
	"strings"
	"time"

	"github.com/konman95/mainst.ai/internal/models"
)

// Reasons shown next to an action in the queue.
const (
	ReasonRestricted       = "Restricted topic or quiet hours require approval."
	ReasonLowConfidence    = "Confidence below threshold."
	ReasonWithinGuardrails = "Within guardrails."
)

type Evaluator struct {
	scorer ConfidenceScorer
}

// NewEvaluator returns an evaluator using scorer, or DefaultScorer if nil.
func NewEvaluator(scorer ConfidenceScorer) *Evaluator {
	if scorer == nil {
		scorer = DefaultScorer
	}
	return &Evaluator{scorer: scorer}
}

// Evaluate maps settings, inbound text and the tenant-local time to a decision.
//
// auto-send is returned only when mode is auto, confidence meets the
// threshold and neither a restricted topic nor quiet hours apply. Mode off
// always yields monitor; everything else awaits approval.
func (e *Evaluator) Evaluate(settings models.OwnerCoverSettings, text string, now time.Time) models.Decision {
	restricted := MatchesRestrictedTopic(settings.RestrictedTopics, text)
	confidence := e.scorer.Score(text, restricted)
	quiet := IsQuietHours(settings, now)
	restrictedOrQuiet := restricted || quiet

	var action string
	switch settings.Mode {
	case models.ModeOff:
		action = models.DecisionMonitor
	case models.ModeAuto:
		if confidence >= settings.ConfidenceThreshold && !restrictedOrQuiet {
			action = models.DecisionAutoSend
		} else {
			action = models.DecisionAwaitApproval
		}
	default:
		action = models.DecisionAwaitApproval
	}

	return models.Decision{
		Action:     action,
		Confidence: confidence,
		Restricted: restrictedOrQuiet,
		QuietHours: quiet,
	}
}

// MatchesRestrictedTopic lower-cases text and checks plain substring
// containment, so "billing" also matches "overbilling".
func MatchesRestrictedTopic(topics []string, text string) bool {
	lower := strings.ToLower(text)
	for _, topic := range topics {
		if strings.Contains(lower, topic) {
			return true
		}
	}
	return false
}

// Reason explains a decision for display in the action queue.
func Reason(settings models.OwnerCoverSettings, d models.Decision) string {
	switch {
	case d.Restricted:
		return ReasonRestricted
	case d.Confidence < settings.ConfidenceThreshold:
		return ReasonLowConfidence
	default:
		return ReasonWithinGuardrails
	}
}
