package entity

import (
	"time"

	"github.com/google/uuid"
)

// SupportingDocument is a snapshot of one retrieved document stored alongside
// the answer it grounded.
type SupportingDocument struct {
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Summary  string  `json:"summary"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score"`
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Question       string
	Answer         string
	QMode          string
	Keywords       []string
	DBContents     []SupportingDocument
	ImageURL       string
	Feedback       string
	CreatedAt      time.Time
}
