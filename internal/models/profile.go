package models

import "time"

const DefaultTone = "Calm, professional, concise."

type BusinessProfile struct {
	Name         string    `json:"name"`
	Services     string    `json:"services"`
	Hours        string    `json:"hours"`
	ServiceArea  string    `json:"serviceArea"`
	PricingNotes string    `json:"pricingNotes"`
	Policies     string    `json:"policies"`
	Tone         string    `json:"tone"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func DefaultBusinessProfile() BusinessProfile {
	return BusinessProfile{Tone: DefaultTone}
}

type BusinessProfilePatch struct {
	Name         *string `json:"name"`
	Services     *string `json:"services"`
	Hours        *string `json:"hours"`
	ServiceArea  *string `json:"serviceArea"`
	PricingNotes *string `json:"pricingNotes"`
	Policies     *string `json:"policies"`
	Tone         *string `json:"tone"`
}

func (p BusinessProfilePatch) ApplyTo(bp BusinessProfile) BusinessProfile {
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&bp.Name, p.Name},
		{&bp.Services, p.Services},
		{&bp.Hours, p.Hours},
		{&bp.ServiceArea, p.ServiceArea},
		{&bp.PricingNotes, p.PricingNotes},
		{&bp.Policies, p.Policies},
		{&bp.Tone, p.Tone},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return bp
}
