package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	Question       string     `json:"question" validate:"required,max=2000"`
	ConversationId *uuid.UUID `json:"conversation_id"`
}

// SupportingDocumentResponse is one retrieved document backing an answer.
type SupportingDocumentResponse struct {
	Title    string  `json:"title"`
	Summary  string  `json:"summary"`
	ImageURL string  `json:"image_url,omitempty"`
	Score    float64 `json:"score"`
}

type AskResponse struct {
	ConversationId uuid.UUID                    `json:"conversation_id"`
	Answer         string                       `json:"answer"`
	Keywords       []string                     `json:"keywords"`
	QMode          string                       `json:"q_mode"`
	ImageURL       string                       `json:"analysis_image_url,omitempty"`
	Documents      []SupportingDocumentResponse `json:"documents"`
}

// AskStreamStartedResponse acknowledges that a streamed pipeline run began.
type AskStreamStartedResponse struct {
	SessionId      string    `json:"session_id"`
	ConversationId uuid.UUID `json:"conversation_id"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id        uuid.UUID                    `json:"id"`
	Role      string                       `json:"role"`
	Question  string                       `json:"question"`
	Answer    string                       `json:"answer"`
	QMode     string                       `json:"q_mode"`
	Keywords  []string                     `json:"keywords"`
	Documents []SupportingDocumentResponse `json:"documents"`
	ImageURL  string                       `json:"image_url,omitempty"`
	Feedback  string                       `json:"feedback,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
}

type ConversationHistoryResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Messages     []MessageResponse    `json:"messages"`
}
