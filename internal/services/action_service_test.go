package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

func queueInbound(t *testing.T, env *testEnv, req InboundRequest) uuid.UUID {
	t.Helper()
	res, err := env.ownerCover.HandleInbound(context.Background(), tenantA, req)
	require.NoError(t, err)
	require.Equal(t, models.DecisionAwaitApproval, res.Action)
	return res.ActionID
}

func TestResolve_ApproveDeliversDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	contact, err := env.contacts.Create(ctx, tenantA, models.ContactPatch{Name: ptr("Ada")})
	require.NoError(t, err)
	id := queueInbound(t, env, InboundRequest{Text: "hi", ContactID: &contact.ID, ConversationID: ptr("conv-1")})

	action, err := env.actions.Resolve(ctx, tenantA, id, " Approved ")
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusApproved, action.Status)
	require.NotNil(t, action.ResolvedAt)

	msgs, err := env.transcripts.History(ctx, tenantA, "conv-1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, DraftResponse, msgs[1].Content)

	stamped, err := env.store.Contacts().GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.NotNil(t, stamped.LastOutboundAt)

	audit, err := env.audit.List(ctx, tenantA, ptr(models.AuditTypeAction), 0, 0)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.ActionStatusApproved, audit[0].Decision)

	env.events.waitFor(t, events.EventActionUpdated)

	_, err = env.actions.Resolve(ctx, tenantA, id, models.ActionStatusDenied)
	assert.ErrorIs(t, err, ErrInvalidTransition, "approved is terminal")
}

func TestResolve_DenyLeavesTranscriptAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := queueInbound(t, env, InboundRequest{Text: "hi", ConversationID: ptr("conv-1")})

	action, err := env.actions.Resolve(ctx, tenantA, id, models.ActionStatusDenied)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusDenied, action.Status)

	msgs, err := env.transcripts.History(ctx, tenantA, "conv-1", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestResolve_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	queued := queueInbound(t, env, InboundRequest{Text: "hi"})

	autoSettings(t, env, models.OwnerCoverSettingsPatch{})
	res, err := env.ownerCover.HandleInbound(ctx, tenantA, InboundRequest{Text: "hours?"})
	require.NoError(t, err)
	sent := res.ActionID

	tests := []struct {
		name    string
		tenant  string
		id      uuid.UUID
		status  string
		wantErr error
	}{
		{"empty status", tenantA, queued, "", ErrValidation},
		{"status not resolvable", tenantA, queued, models.ActionStatusSent, ErrValidation},
		{"unknown status", tenantA, queued, "maybe", ErrValidation},
		{"missing action", tenantA, uuid.New(), models.ActionStatusApproved, repositories.ErrNotFound},
		{"other tenant", tenantB, queued, models.ActionStatusApproved, ErrForbidden},
		{"sent is terminal", tenantA, sent, models.ActionStatusApproved, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.actions.Resolve(ctx, tt.tenant, tt.id, tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	a, err := env.store.Actions().GetByID(ctx, queued)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusQueued, a.Status)
}

func TestActionList_FiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	queueInbound(t, env, InboundRequest{Text: "one"})
	id := queueInbound(t, env, InboundRequest{Text: "two"})
	_, err := env.actions.Resolve(ctx, tenantA, id, models.ActionStatusDenied)
	require.NoError(t, err)

	all, err := env.actions.List(ctx, tenantA, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "two", all[0].Message)

	queued, err := env.actions.List(ctx, tenantA, ptr(models.ActionStatusQueued), 0, 0)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "one", queued[0].Message)

	other, err := env.actions.List(ctx, tenantB, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}
