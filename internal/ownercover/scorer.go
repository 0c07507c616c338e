package ownercover

// ConfidenceScorer assigns a confidence in [0,1] to an inbound message.
// restricted reports whether a restricted topic matched the text.
type ConfidenceScorer interface {
	Score(text string, restricted bool) float64
}

const (
	RestrictedConfidence = 0.6
	ClearConfidence      = 0.9
)

// StaticScorer returns one of two fixed values depending on restriction.
type StaticScorer struct {
	Restricted float64
	Clear      float64
}

// DefaultScorer is the bimodal heuristic used until a real classifier is wired.
var DefaultScorer = StaticScorer{Restricted: RestrictedConfidence, Clear: ClearConfidence}

func (s StaticScorer) Score(_ string, restricted bool) float64 {
	if restricted {
		return s.Restricted
	}
	return s.Clear
}
