package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

func TestSettingsRoundTripIsolated(t *testing.T) {
	ctx := context.Background()
	repo := New().Settings()

	_, err := repo.Get(ctx, "tenant-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	s := models.DefaultOwnerCoverSettings()
	require.NoError(t, repo.Save(ctx, "tenant-1", s))

	got, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	got.RestrictedTopics[0] = "mutated"

	again, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "billing", again.RestrictedTopics[0])

	_, err = repo.Get(ctx, "tenant-2")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestActionsNewestFirstAndScoped(t *testing.T) {
	ctx := context.Background()
	repo := New().Actions()

	first := &models.Action{TenantID: "a", Status: models.ActionStatusSent}
	second := &models.Action{TenantID: "a", Status: models.ActionStatusQueued}
	other := &models.Action{TenantID: "b", Status: models.ActionStatusQueued}
	for _, a := range []*models.Action{first, second, other} {
		require.NoError(t, repo.Create(ctx, a))
	}

	list, err := repo.List(ctx, repositories.ActionFilter{TenantID: "a"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	queued := models.ActionStatusQueued
	list, err = repo.List(ctx, repositories.ActionFilter{TenantID: "a", Status: &queued})
	require.NoError(t, err)
	require.Len(t, list, 1)

	now := time.Now()
	require.NoError(t, repo.UpdateStatus(ctx, second.ID, models.ActionStatusQueued, models.ActionStatusApproved, now))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, second.ID, models.ActionStatusQueued, models.ActionStatusDenied, now), repositories.ErrStaleStatus)
	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusApproved, got.Status)
	require.NotNil(t, got.ResolvedAt)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.ActionStatusQueued, models.ActionStatusDenied, now), repositories.ErrNotFound)

	counts, err := repo.CountByStatus(ctx, "a", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.ActionStatusSent: 1, models.ActionStatusApproved: 1}, counts)
}

func TestAuditPaging(t *testing.T) {
	ctx := context.Background()
	repo := New().Audit()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Log(ctx, &models.AuditEvent{TenantID: "a", Type: models.AuditTypeChat}))
	}
	require.NoError(t, repo.Log(ctx, &models.AuditEvent{TenantID: "a", Type: models.AuditTypeSettings}))

	list, err := repo.List(ctx, repositories.AuditFilter{TenantID: "a", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.AuditTypeChat, list[0].Type)

	list, err = repo.List(ctx, repositories.AuditFilter{TenantID: "a", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list)

	settingsType := models.AuditTypeSettings
	list, err = repo.List(ctx, repositories.AuditFilter{TenantID: "a", Type: &settingsType})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := repo.Count(ctx, "a", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestContactsFollowUpCandidates(t *testing.T) {
	ctx := context.Background()
	repo := New().Contacts()

	now := time.Now()
	stale := &models.Contact{TenantID: "a", Name: "stale"}
	answered := &models.Contact{TenantID: "a", Name: "answered"}
	fresh := &models.Contact{TenantID: "a", Name: "fresh"}
	foreign := &models.Contact{TenantID: "b", Name: "foreign"}
	for _, c := range []*models.Contact{stale, answered, fresh, foreign} {
		require.NoError(t, repo.Create(ctx, c))
	}
	require.NoError(t, repo.TouchInbound(ctx, stale.ID, now.Add(-48*time.Hour)))
	require.NoError(t, repo.TouchInbound(ctx, answered.ID, now.Add(-48*time.Hour)))
	require.NoError(t, repo.TouchOutbound(ctx, answered.ID, now.Add(-47*time.Hour)))
	require.NoError(t, repo.TouchInbound(ctx, fresh.ID, now.Add(-time.Hour)))
	require.NoError(t, repo.TouchInbound(ctx, foreign.ID, now.Add(-72*time.Hour)))

	tenant := "a"
	cutoff := now.Add(-24 * time.Hour)
	list, err := repo.ListFollowUpCandidates(ctx, repositories.FollowUpFilter{TenantID: &tenant, Cutoff: cutoff})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "stale", list[0].Name)

	list, err = repo.ListFollowUpCandidates(ctx, repositories.FollowUpFilter{Cutoff: cutoff})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "foreign", list[0].Name)
}

func TestContactsUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := New().Contacts()

	c := &models.Contact{TenantID: "a", Name: "Ada"}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotNil(t, c.Tags)

	c.Name = "Ada L."
	c.Tags = []string{"vip"}
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, []string{"vip"}, got.Tags)

	n, err := repo.Count(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, c), repositories.ErrNotFound)
}

func TestConversationMessagesWindow(t *testing.T) {
	ctx := context.Background()
	repo := New().Conversations()

	err := repo.AppendMessage(ctx, "a", "missing", models.Message{Role: models.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	conv := models.Conversation{ID: "c-1", TenantID: "a", Channel: models.ChannelWeb, UpdatedAt: time.Now()}
	require.NoError(t, repo.Touch(ctx, conv))
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, repo.AppendMessage(ctx, "a", conv.ID, models.Message{Role: models.RoleUser, Content: text}))
	}

	msgs, err := repo.ListMessages(ctx, "a", conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Content)
	assert.Equal(t, "three", msgs[1].Content)

	all, err := repo.ListMessages(ctx, "a", conv.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := repo.ListMessages(ctx, "a", "other", 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestConversationsScopedToTenant(t *testing.T) {
	ctx := context.Background()
	repo := New().Conversations()

	// Tenant b claims the id tenant a uses by default.
	require.NoError(t, repo.Touch(ctx, models.Conversation{ID: "a-default", TenantID: "b", UpdatedAt: time.Now()}))
	require.NoError(t, repo.AppendMessage(ctx, "b", "a-default", models.Message{Role: models.RoleUser, Content: "from b"}))

	_, err := repo.Get(ctx, "a", "a-default")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.AppendMessage(ctx, "a", "a-default", models.Message{Content: "x"}), repositories.ErrNotFound)

	require.NoError(t, repo.Touch(ctx, models.Conversation{ID: "a-default", TenantID: "a", UpdatedAt: time.Now()}))
	require.NoError(t, repo.AppendMessage(ctx, "a", "a-default", models.Message{Role: models.RoleUser, Content: "from a"}))

	msgsA, err := repo.ListMessages(ctx, "a", "a-default", 0)
	require.NoError(t, err)
	require.Len(t, msgsA, 1)
	assert.Equal(t, "from a", msgsA[0].Content)

	msgsB, err := repo.ListMessages(ctx, "b", "a-default", 0)
	require.NoError(t, err)
	require.Len(t, msgsB, 1)
	assert.Equal(t, "from b", msgsB[0].Content)
}
