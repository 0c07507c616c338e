package ownercover

import (
	"strconv"
	"strings"
	"time"

	"github.com/konman95/mainst.ai/internal/models"
)

// ParseClock converts "H:MM" or "HH:MM" (24-hour) into minutes since midnight.
// Single-digit minutes ("9:5") and hour 24 ("24:00") are rejected rather
// than read as 545 or 1440.
func ParseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// IsQuietHours reports whether now falls inside the configured window.
// The window start is inclusive and the end exclusive. A window whose start
// is not before its end wraps midnight. If either bound fails to parse the
// window is treated as disabled, so a "24:00" start never silences the
// early morning. The settings API refuses such values before they are stored.
func IsQuietHours(s models.OwnerCoverSettings, now time.Time) bool {
	if !s.QuietHoursEnabled {
		return false
	}
	start, ok := ParseClock(s.QuietHoursStart)
	if !ok {
		return false
	}
	end, ok := ParseClock(s.QuietHoursEnd)
	if !ok {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	if start < end {
		return current >= start && current < end
	}
	return current >= start || current < end
}
