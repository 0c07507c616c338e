package services

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/ownercover"
	"github.com/konman95/mainst.ai/internal/repositories/memory"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) add(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// waitFor asserts that an event of the given type is delivered.
func (r *recordedEvents) waitFor(t *testing.T, eventType string) {
	t.Helper()
	assert.Eventually(t, func() bool { return slices.Contains(r.types(), eventType) },
		time.Second, 5*time.Millisecond, "event %s not delivered", eventType)
}

type testEnv struct {
	store       *memory.Store
	cfg         *config.Config
	events      *recordedEvents
	audit       *AuditService
	transcripts *TranscriptService
	ownerCover  *OwnerCoverService
	actions     *ActionService
	contacts    *ContactService
	profiles    *ProfileService
	dashboard   *DashboardService
	followUps   *FollowUpService
}

func testConfig() *config.Config {
	cfg := &config.Config{
		SavedMinutesPerAction: 2,
		FollowUpEnabled:       true,
		FollowUpAfterHours:    24,
		FollowUpTemplate:      "Just checking in. Did you still want help with this?",
	}
	cfg.SetLocation(time.UTC)
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	store := memory.New()
	cfg := testConfig()
	bus := events.NewMemoryBus()
	rec := &recordedEvents{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := bus.Subscribe(ctx, events.StreamOwnerCover, rec.add); err != nil {
		t.Fatal(err)
	}

	audit := NewAuditService(store.Audit(), bus, log)
	transcripts := NewTranscriptService(store.Conversations())
	evaluator := ownercover.NewEvaluator(nil)
	profiles := NewProfileService(store.Profiles(), nil)

	return &testEnv{
		store:       store,
		cfg:         cfg,
		events:      rec,
		audit:       audit,
		transcripts: transcripts,
		ownerCover: NewOwnerCoverService(store.Settings(), store.Actions(), store.Contacts(),
			transcripts, audit, evaluator, bus, cfg, log),
		actions:   NewActionService(store.Actions(), store.Contacts(), transcripts, audit, bus, log),
		contacts:  NewContactService(store.Contacts(), log),
		profiles:  profiles,
		dashboard: NewDashboardService(store.Actions(), store.Audit(), store.Contacts(), cfg),
		followUps: NewFollowUpService(store.Contacts(), store.Actions(), store.Settings(),
			transcripts, audit, evaluator, bus, cfg, log),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptr[T any](v T) *T {
	return &v
}
