package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id              uuid.UUID
	DocumentName    string
	Text            string
	SummaryPurpose  string
	SummaryResult   string
	SummaryFeedback string
	ImageURL        string
	Embedding       []float32
	CreatedAt       time.Time
}
