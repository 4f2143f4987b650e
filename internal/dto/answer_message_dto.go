package dto

import "github.com/google/uuid"

// SupportingDocumentMessage is the persisted snapshot of one document that
// grounded an answer.
type SupportingDocumentMessage struct {
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Summary  string  `json:"summary"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score"`
}

// AnswerCompletedMessage travels over the in-process bus from the ask
// pipeline to the persistence consumer once a run has finished.
type AnswerCompletedMessage struct {
	ConversationId uuid.UUID                   `json:"conversation_id"`
	UserId         uuid.UUID                   `json:"user_id"`
	Question       string                      `json:"question"`
	Answer         string                      `json:"answer"`
	QMode          string                      `json:"q_mode"`
	Keywords       []string                    `json:"keywords"`
	ImageURL       string                      `json:"image_url"`
	Documents      []SupportingDocumentMessage `json:"documents"`
}
