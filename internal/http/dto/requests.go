package dto

// Settings, contact and profile updates decode straight into the
// models.*Patch types.

type ResolveActionRequest struct {
	Status string `json:"status"`
}

type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversationId,omitempty"`
}

type ManualReplyRequest struct {
	Response       string  `json:"response"`
	ConversationID *string `json:"conversationId,omitempty"`
}

type DevTokenRequest struct {
	TenantID string `json:"uid"`
	Role     string `json:"role,omitempty"`
}

type ProfileImportRequest struct {
	URL       string `json:"url"`
	Overwrite bool   `json:"overwrite,omitempty"`
}
