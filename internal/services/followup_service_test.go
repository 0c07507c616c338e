package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

var sweepNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func staleContact(t *testing.T, env *testEnv, tenantID, name string) *models.Contact {
	t.Helper()
	ctx := context.Background()
	c, err := env.contacts.Create(ctx, tenantID, models.ContactPatch{Name: ptr(name)})
	require.NoError(t, err)
	require.NoError(t, env.store.Contacts().TouchInbound(ctx, c.ID, sweepNow.Add(-30*time.Hour)))
	return c
}

func TestSweep_AutoSendsWhenAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	autoSettings(t, env, models.OwnerCoverSettingsPatch{})
	env.followUps.now = fixedClock(sweepNow)
	c := staleContact(t, env, tenantA, "Ada")

	res, err := env.followUps.Sweep(ctx, ptr(tenantA))
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Enabled: true, Sent: 1}, res)

	stamped, err := env.store.Contacts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stamped.LastOutboundAt)
	assert.True(t, stamped.LastOutboundAt.Equal(sweepNow))

	msgs, err := env.transcripts.History(ctx, tenantA, ContactConversationID(c.ID), 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, env.cfg.FollowUpTemplate, msgs[0].Content)

	again, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Sent+again.Queued, "answered contacts are not followed up twice")
}

func TestSweep_QueuesInMonitorModeOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.followUps.now = fixedClock(sweepNow)
	c := staleContact(t, env, tenantA, "Ada")

	res, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Queued)

	res, err = env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Queued)
	assert.Equal(t, 1, res.Skipped, "a pending draft blocks another one")

	actions, err := env.store.Actions().List(ctx, repositories.ActionFilter{TenantID: tenantA, ContactID: &c.ID})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionStatusQueued, actions[0].Status)

	audit, err := env.audit.List(ctx, tenantA, ptr(models.AuditTypeFollowUp), 0, 0)
	require.NoError(t, err)
	assert.Len(t, audit, 1)
}

func TestSweep_SkipsWhenOwnerCoverOff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.ownerCover.ReplaceSettings(ctx, tenantA, models.OwnerCoverSettingsPatch{Mode: ptr(models.ModeOff)})
	require.NoError(t, err)
	env.followUps.now = fixedClock(sweepNow)
	staleContact(t, env, tenantA, "Ada")
	staleContact(t, env, tenantB, "Bob")

	res, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Queued, "tenant b still has default monitor settings")
}

func TestSweep_ScopedToTenant(t *testing.T) {
	env := newTestEnv(t)
	env.followUps.now = fixedClock(sweepNow)
	staleContact(t, env, tenantA, "Ada")
	staleContact(t, env, tenantB, "Bob")

	tenant := tenantB
	res, err := env.followUps.Sweep(context.Background(), &tenant)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Queued)

	actions, err := env.store.Actions().List(context.Background(), repositories.ActionFilter{TenantID: tenantA})
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestSweep_Disabled(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.FollowUpEnabled = false
	env.followUps.now = fixedClock(sweepNow)
	staleContact(t, env, tenantA, "Ada")

	res, err := env.followUps.Sweep(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{}, res)
}

func TestSweep_IgnoresRecentInbound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.followUps.now = fixedClock(sweepNow)
	c, err := env.contacts.Create(ctx, tenantA, models.ContactPatch{Name: ptr("Ada")})
	require.NoError(t, err)
	require.NoError(t, env.store.Contacts().TouchInbound(ctx, c.ID, sweepNow.Add(-time.Hour)))

	res, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Enabled: true}, res)
}

func TestSweep_SkippedContactsDoNotStarveOtherTenants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.ownerCover.ReplaceSettings(ctx, tenantA, models.OwnerCoverSettingsPatch{Mode: ptr(models.ModeOff)})
	require.NoError(t, err)
	env.followUps.now = fixedClock(sweepNow)

	for i := 0; i < MaxFollowUpsPerSweep+10; i++ {
		staleContact(t, env, tenantA, "Ada")
	}
	bob, err := env.contacts.Create(ctx, tenantB, models.ContactPatch{Name: ptr("Bob")})
	require.NoError(t, err)
	// Newer than every tenant a contact, so it sorts last.
	require.NoError(t, env.store.Contacts().TouchInbound(ctx, bob.ID, sweepNow.Add(-25*time.Hour)))

	for range 3 {
		_, err := env.followUps.Sweep(ctx, nil)
		require.NoError(t, err)
	}

	actions, err := env.store.Actions().List(ctx, repositories.ActionFilter{TenantID: tenantB, ContactID: &bob.ID})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, models.ActionKindFollowUp, actions[0].Kind)
}

func TestSweep_PagesPastPendingDrafts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.followUps.now = fixedClock(sweepNow)
	total := MaxFollowUpsPerSweep + 5
	for i := 0; i < total; i++ {
		staleContact(t, env, tenantA, "Ada")
	}

	first, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, MaxFollowUpsPerSweep, first.Queued)

	second, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, second.Queued)
	assert.Equal(t, MaxFollowUpsPerSweep, second.Skipped)

	actions, err := env.store.Actions().List(ctx, repositories.ActionFilter{TenantID: tenantA, Limit: repositories.MaxListLimit})
	require.NoError(t, err)
	assert.Len(t, actions, total)
}

func TestSweep_DeniedFollowUpIsNotRequeued(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.followUps.now = fixedClock(sweepNow)
	c := staleContact(t, env, tenantA, "Ada")

	res, err := env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Queued)

	queued, err := env.store.Actions().List(ctx, repositories.ActionFilter{TenantID: tenantA, ContactID: &c.ID})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	_, err = env.actions.Resolve(ctx, tenantA, queued[0].ID, models.ActionStatusDenied)
	require.NoError(t, err)

	for range 3 {
		res, err = env.followUps.Sweep(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, &SweepResult{Enabled: true, Skipped: 1}, res)
	}

	// A new unanswered message re-arms the contact.
	later := sweepNow.Add(48 * time.Hour)
	require.NoError(t, env.store.Contacts().TouchInbound(ctx, c.ID, sweepNow.Add(time.Hour)))
	env.followUps.now = fixedClock(later)

	res, err = env.followUps.Sweep(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Queued)

	all, err := env.store.Actions().List(ctx, repositories.ActionFilter{TenantID: tenantA, ContactID: &c.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
