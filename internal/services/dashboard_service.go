package services

import (
	"context"
	"time"

	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

// Summary ranges
const (
	RangeDay  = "day"
	RangeWeek = "week"
)

type DashboardSummary struct {
	Range        string         `json:"range"`
	Since        time.Time      `json:"since"`
	Actions      map[string]int `json:"actions"`
	Queued       int            `json:"queued"`
	AuditEvents  int            `json:"auditEvents"`
	Contacts     int            `json:"contacts"`
	MinutesSaved int            `json:"minutesSaved"`
}

type DashboardService struct {
	actionRepo  repositories.ActionRepository
	auditRepo   repositories.AuditRepository
	contactRepo repositories.ContactRepository
	cfg         *config.Config
	now         func() time.Time
}

func NewDashboardService(
	actionRepo repositories.ActionRepository,
	auditRepo repositories.AuditRepository,
	contactRepo repositories.ContactRepository,
	cfg *config.Config,
) *DashboardService {
	return &DashboardService{
		actionRepo:  actionRepo,
		auditRepo:   auditRepo,
		contactRepo: contactRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// windowStart returns local midnight today, or six days before it for a week.
func windowStart(now time.Time, rng string) time.Time {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if rng == RangeWeek {
		start = start.AddDate(0, 0, -6)
	}
	return start
}

func (s *DashboardService) Summary(ctx context.Context, tenantID, rng string) (*DashboardSummary, error) {
	switch rng {
	case "":
		rng = RangeDay
	case RangeDay, RangeWeek:
	default:
		return nil, validationError("range must be day or week")
	}

	since := windowStart(s.now().In(s.cfg.Location()), rng)

	counts, err := s.actionRepo.CountByStatus(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	auditCount, err := s.auditRepo.Count(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	handled := counts[models.ActionStatusSent] + counts[models.ActionStatusApproved]
	return &DashboardSummary{
		Range:        rng,
		Since:        since,
		Actions:      counts,
		Queued:       counts[models.ActionStatusQueued],
		AuditEvents:  auditCount,
		Contacts:     contacts,
		MinutesSaved: handled * s.cfg.SavedMinutesPerAction,
	}, nil
}
