package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role           string         `gorm:"type:varchar(50);not null"` // "user" or "assistant"
	Question       string         `gorm:"type:text;not null"`
	Answer         string         `gorm:"type:text"`
	QMode          string         `gorm:"type:varchar(20)"` // "search" or "add"
	Keywords       datatypes.JSON `gorm:"type:jsonb"`       // augmented keyword list
	DBContents     datatypes.JSON `gorm:"type:jsonb"`       // top supporting documents snapshot
	ImageURL       string         `gorm:"type:text"`
	Feedback       string         `gorm:"type:varchar(20)"` // "positive" or "negative"
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
