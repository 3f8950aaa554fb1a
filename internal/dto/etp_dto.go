package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	SessionId  uuid.UUID `json:"session_id"`
	AiResponse string    `json:"ai_response"`
	Stage      string    `json:"stage"`
}

// ProcessMessageRequest carries one conversation turn. An omitted
// session id starts a new session; the response echoes the id in use.
type ProcessMessageRequest struct {
	SessionId uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

// ProcessMessageResponse is the envelope of every conversation turn.
// Success is false only for unusable input (empty message); an
// unrecognized command still succeeds and carries a guiding question.
type ProcessMessageResponse struct {
	Success      bool      `json:"success"`
	SessionId    uuid.UUID `json:"session_id"`
	AiResponse   string    `json:"ai_response"`
	Stage        string    `json:"stage"`
	Topic        string    `json:"topic,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	Pending      bool      `json:"pending_decision"`
}

type ChatHistoryItem struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

type PreviewSection struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

type PreviewResponse struct {
	SessionId uuid.UUID        `json:"session_id"`
	Stage     string           `json:"stage"`
	Sections  []PreviewSection `json:"sections"`
}

type FinalizeResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Stage     string    `json:"stage"`
	Published bool      `json:"published"`
}

type AddKbDocumentRequest struct {
	SectionType string `json:"section_type" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

type AddKbDocumentResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
}
