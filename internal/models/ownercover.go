package models

// Owner Cover modes
const (
	ModeOff     = "off"
	ModeMonitor = "monitor"
	ModeAuto    = "auto"
)

// Decision actions
const (
	DecisionAutoSend      = "auto-send"
	DecisionAwaitApproval = "await-approval"
	DecisionMonitor       = "monitor"
)

// OwnerCoverSettings is stored per tenant and overwritten in place.
type OwnerCoverSettings struct {
	Mode                string   `json:"mode"`
	ConfidenceThreshold float64  `json:"confidenceThreshold"`
	RestrictedTopics    []string `json:"restrictedTopics"`
	QuietHoursStart     string   `json:"quietHoursStart"`
	QuietHoursEnd       string   `json:"quietHoursEnd"`
	QuietHoursEnabled   bool     `json:"quietHoursEnabled"`
}

// DefaultOwnerCoverSettings is applied when a tenant has nothing configured.
func DefaultOwnerCoverSettings() OwnerCoverSettings {
	return OwnerCoverSettings{
		Mode:                ModeMonitor,
		ConfidenceThreshold: 0.85,
		RestrictedTopics:    []string{"billing", "complaints", "legal"},
		QuietHoursStart:     "20:00",
		QuietHoursEnd:       "07:00",
		QuietHoursEnabled:   false,
	}
}

func IsValidMode(mode string) bool {
	switch mode {
	case ModeOff, ModeMonitor, ModeAuto:
		return true
	}
	return false
}

// Decision is the evaluator output. Restricted is true when either a
// restricted topic matched or quiet hours are in effect.
type Decision struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Restricted bool    `json:"restricted"`
	QuietHours bool    `json:"quietHours"`
}

// OwnerCoverSettingsPatch names every settings field as optional. Nil
// fields are left untouched by ApplyTo.
type OwnerCoverSettingsPatch struct {
	Mode                *string   `json:"mode"`
	ConfidenceThreshold *float64  `json:"confidenceThreshold"`
	RestrictedTopics    *[]string `json:"restrictedTopics"`
	QuietHoursStart     *string   `json:"quietHoursStart"`
	QuietHoursEnd       *string   `json:"quietHoursEnd"`
	QuietHoursEnabled   *bool     `json:"quietHoursEnabled"`
}

func (p OwnerCoverSettingsPatch) ApplyTo(s OwnerCoverSettings) OwnerCoverSettings {
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.ConfidenceThreshold != nil {
		s.ConfidenceThreshold = *p.ConfidenceThreshold
	}
	if p.RestrictedTopics != nil {
		s.RestrictedTopics = append([]string{}, (*p.RestrictedTopics)...)
	}
	if p.QuietHoursStart != nil {
		s.QuietHoursStart = *p.QuietHoursStart
	}
	if p.QuietHoursEnd != nil {
		s.QuietHoursEnd = *p.QuietHoursEnd
	}
	if p.QuietHoursEnabled != nil {
		s.QuietHoursEnabled = *p.QuietHoursEnabled
	}
	return s
}
