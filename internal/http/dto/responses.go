package dto

import "github.com/google/uuid"

type AuthResponse struct {
	Token    string `json:"token"`
	TenantID string `json:"uid"`
	Role     string `json:"role"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type InboundResponse struct {
	OK         bool      `json:"ok"`
	Action     string    `json:"action"`
	Confidence float64   `json:"confidence"`
	Restricted bool      `json:"restricted"`
	QuietHours bool      `json:"quietHours"`
	Summary    string    `json:"summary"`
	Incoming   any       `json:"incoming"`
	ActionID   uuid.UUID `json:"actionId"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Storage   string `json:"storage"`
	Redis     string `json:"redis"`
	Inference string `json:"inference"`
}
