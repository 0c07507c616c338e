// Package memory is the process-local storage backend. State is lost on
// restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

// Store holds every entity behind one lock and hands out per-entity views
// that satisfy the repositories interfaces.
type Store struct {
	mu            sync.RWMutex
	settings      map[string]models.OwnerCoverSettings
	profiles      map[string]models.BusinessProfile
	actions       []models.Action
	audit         []models.AuditEvent
	contacts      map[uuid.UUID]models.Contact
	conversations map[convKey]models.Conversation
	messages      map[convKey][]models.Message
}

func New() *Store {
	return &Store{
		settings:      map[string]models.OwnerCoverSettings{},
		profiles:      map[string]models.BusinessProfile{},
		contacts:      map[uuid.UUID]models.Contact{},
		conversations: map[convKey]models.Conversation{},
		messages:      map[convKey][]models.Message{},
	}
}

func (s *Store) Settings() *SettingsRepo          { return &SettingsRepo{s} }
func (s *Store) Actions() *ActionRepo             { return &ActionRepo{s} }
func (s *Store) Audit() *AuditRepo                { return &AuditRepo{s} }
func (s *Store) Contacts() *ContactRepo           { return &ContactRepo{s} }
func (s *Store) Conversations() *ConversationRepo { return &ConversationRepo{s} }
func (s *Store) Profiles() *ProfileRepo           { return &ProfileRepo{s} }

func (s *Store) Set() repositories.Set {
	return repositories.Set{
		Settings:      s.Settings(),
		Actions:       s.Actions(),
		Audit:         s.Audit(),
		Contacts:      s.Contacts(),
		Conversations: s.Conversations(),
		Profiles:      s.Profiles(),
	}
}

func page[T any](items []T, limit, offset int) []T {
	limit = repositories.ClampLimit(limit)
	offset = max(offset, 0)
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}

func notFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, repositories.ErrNotFound)
}

type SettingsRepo struct{ s *Store }

func (r *SettingsRepo) Get(_ context.Context, tenantID string) (*models.OwnerCoverSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.settings[tenantID]
	if !ok {
		return nil, notFound("owner cover settings", tenantID)
	}
	v.RestrictedTopics = slices.Clone(v.RestrictedTopics)
	return &v, nil
}

func (r *SettingsRepo) Save(_ context.Context, tenantID string, v models.OwnerCoverSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v.RestrictedTopics = slices.Clone(v.RestrictedTopics)
	if v.RestrictedTopics == nil {
		v.RestrictedTopics = []string{}
	}
	r.s.settings[tenantID] = v
	return nil
}

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) Get(_ context.Context, tenantID string) (*models.BusinessProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[tenantID]
	if !ok {
		return nil, notFound("business profile", tenantID)
	}
	return &p, nil
}

func (r *ProfileRepo) Save(_ context.Context, tenantID string, p models.BusinessProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[tenantID] = p
	return nil
}

// ActionRepo keeps actions newest first.
type ActionRepo struct{ s *Store }

func (r *ActionRepo) Create(_ context.Context, a *models.Action) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Kind == "" {
		a.Kind = models.ActionKindReply
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.actions = slices.Insert(r.s.actions, 0, *a)
	return nil
}

func (r *ActionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Action, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.actions {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, notFound("action", id)
}

func (r *ActionRepo) List(_ context.Context, f repositories.ActionFilter) ([]models.Action, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Action
	for _, a := range r.s.actions {
		if a.TenantID != f.TenantID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.ContactID != nil && (a.ContactID == nil || *a.ContactID != *f.ContactID) {
			continue
		}
		if f.Kind != nil && a.Kind != *f.Kind {
			continue
		}
		if f.Since != nil && a.CreatedAt.Before(*f.Since) {
			continue
		}
		out = append(out, a)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *ActionRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to string, resolvedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.actions {
		if r.s.actions[i].ID == id {
			if r.s.actions[i].Status != from {
				return fmt.Errorf("action %s: %w", id, repositories.ErrStaleStatus)
			}
			r.s.actions[i].Status = to
			r.s.actions[i].ResolvedAt = &resolvedAt
			return nil
		}
	}
	return notFound("action", id)
}

func (r *ActionRepo) CountByStatus(_ context.Context, tenantID string, since time.Time) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[string]int{}
	for _, a := range r.s.actions {
		if a.TenantID == tenantID && !a.CreatedAt.Before(since) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// AuditRepo keeps events newest first.
type AuditRepo struct{ s *Store }

func (r *AuditRepo) Log(_ context.Context, e *models.AuditEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = slices.Insert(r.s.audit, 0, *e)
	return nil
}

func (r *AuditRepo) List(_ context.Context, f repositories.AuditFilter) ([]models.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.AuditEvent
	for _, e := range r.s.audit {
		if e.TenantID != f.TenantID {
			continue
		}
		if f.Type != nil && e.Type != *f.Type {
			continue
		}
		out = append(out, e)
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *AuditRepo) Count(_ context.Context, tenantID string, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, e := range r.s.audit {
		if e.TenantID == tenantID && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type ContactRepo struct{ s *Store }

func cloneContact(c models.Contact) models.Contact {
	c.Tags = slices.Clone(c.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

func (r *ContactRepo) Create(_ context.Context, c *models.Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.contacts[c.ID] = cloneContact(*c)
	return nil
}

func (r *ContactRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, notFound("contact", id)
	}
	c = cloneContact(c)
	return &c, nil
}

// sorted returns the contacts matching keep, newest first.
func (r *ContactRepo) sorted(keep func(models.Contact) bool) []models.Contact {
	var out []models.Contact
	for _, c := range r.s.contacts {
		if keep(c) {
			out = append(out, cloneContact(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ContactRepo) List(_ context.Context, tenantID string, limit, offset int) ([]models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.sorted(func(c models.Contact) bool { return c.TenantID == tenantID })
	return page(out, limit, offset), nil
}

func (r *ContactRepo) Update(_ context.Context, c *models.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.contacts[c.ID]
	if !ok {
		return notFound("contact", c.ID)
	}
	cur.Name, cur.Email, cur.Phone, cur.Notes, cur.Status = c.Name, c.Email, c.Phone, c.Notes, c.Status
	cur.Tags = slices.Clone(c.Tags)
	cur.UpdatedAt = time.Now().UTC()
	c.UpdatedAt = cur.UpdatedAt
	r.s.contacts[c.ID] = cur
	return nil
}

func (r *ContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return notFound("contact", id)
	}
	delete(r.s.contacts, id)
	return nil
}

func (r *ContactRepo) Count(_ context.Context, tenantID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, c := range r.s.contacts {
		if c.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *ContactRepo) touch(id uuid.UUID, at time.Time, inbound bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return notFound("contact", id)
	}
	if inbound {
		c.LastInboundAt = &at
	} else {
		c.LastOutboundAt = &at
	}
	c.LastContact = &at
	c.UpdatedAt = time.Now().UTC()
	r.s.contacts[id] = c
	return nil
}

func (r *ContactRepo) TouchInbound(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.touch(id, at, true)
}

func (r *ContactRepo) TouchOutbound(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.touch(id, at, false)
}

func (r *ContactRepo) ListFollowUpCandidates(_ context.Context, f repositories.FollowUpFilter) ([]models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.sorted(func(c models.Contact) bool {
		if f.TenantID != nil && c.TenantID != *f.TenantID {
			return false
		}
		if !c.NeedsFollowUp(f.Cutoff) {
			return false
		}
		return f.After == nil || followUpAfter(c, *f.After)
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.LastInboundAt.Equal(*b.LastInboundAt) {
			return a.LastInboundAt.Before(*b.LastInboundAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return page(out, f.Limit, 0), nil
}

// followUpAfter orders contacts by (last inbound, id) like the Postgres
// row comparison.
func followUpAfter(c models.Contact, cur repositories.FollowUpCursor) bool {
	if !c.LastInboundAt.Equal(cur.LastInboundAt) {
		return c.LastInboundAt.After(cur.LastInboundAt)
	}
	return c.ID.String() > cur.ID.String()
}

type convKey struct{ tenantID, id string }

type ConversationRepo struct{ s *Store }

func (r *ConversationRepo) Get(_ context.Context, tenantID, id string) (*models.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.conversations[convKey{tenantID, id}]
	if !ok {
		return nil, notFound("conversation", id)
	}
	return &c, nil
}

func (r *ConversationRepo) Touch(_ context.Context, c models.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := convKey{c.TenantID, c.ID}
	if cur, ok := r.s.conversations[key]; ok {
		cur.UpdatedAt = c.UpdatedAt
		r.s.conversations[key] = cur
		return nil
	}
	r.s.conversations[key] = c
	return nil
}

func (r *ConversationRepo) AppendMessage(_ context.Context, tenantID, conversationID string, m models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := convKey{tenantID, conversationID}
	if _, ok := r.s.conversations[key]; !ok {
		return notFound("conversation", conversationID)
	}
	r.s.messages[key] = append(r.s.messages[key], m)
	return nil
}

func (r *ConversationRepo) ListMessages(_ context.Context, tenantID, conversationID string, limit int) ([]models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	msgs := r.s.messages[convKey{tenantID, conversationID}]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]models.Message{}, msgs...), nil
}

var (
	_ repositories.SettingsRepository     = (*SettingsRepo)(nil)
	_ repositories.ProfileRepository      = (*ProfileRepo)(nil)
	_ repositories.ActionRepository       = (*ActionRepo)(nil)
	_ repositories.AuditRepository        = (*AuditRepo)(nil)
	_ repositories.ContactRepository      = (*ContactRepo)(nil)
	_ repositories.ConversationRepository = (*ConversationRepo)(nil)
)
