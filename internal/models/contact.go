package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const ContactStatusNew = "new"

type Contact struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       string     `json:"uid"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Notes          string     `json:"notes"`
	Tags           []string   `json:"tags"`
	Status         string     `json:"status"`
	LastContact    *time.Time `json:"lastContact"`
	LastInboundAt  *time.Time `json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time `json:"lastOutboundAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NeedsFollowUp reports whether the contact wrote in before cutoff and has
// not been answered since.
func (c *Contact) NeedsFollowUp(cutoff time.Time) bool {
	if c.LastInboundAt == nil || !c.LastInboundAt.Before(cutoff) {
		return false
	}
	return c.LastOutboundAt == nil || c.LastOutboundAt.Before(*c.LastInboundAt)
}

type ContactPatch struct {
	Name   *string   `json:"name"`
	Email  *string   `json:"email"`
	Phone  *string   `json:"phone"`
	Notes  *string   `json:"notes"`
	Tags   *[]string `json:"tags"`
	Status *string   `json:"status"`
}

// ApplyTo trims every provided field and drops empty tags.
func (p ContactPatch) ApplyTo(c *Contact) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Name, p.Name)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.Notes, p.Notes)
	set(&c.Status, p.Status)
	if p.Tags != nil {
		c.Tags = CleanTags(*p.Tags)
	}
}

func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
