package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbeddingDim is the width of the embedding_value column. The gorm tag below
// and the HNSW index created by the migrator both fix it at schema time, so a
// provider emitting a different width must be rejected at startup.
const EmbeddingDim = 4

type DocumentEmbedding struct {
	Id              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentName    string          `gorm:"type:text;not null;index"`
	Text            string          `gorm:"type:text"`
	SummaryPurpose  string          `gorm:"type:text"`
	SummaryResult   string          `gorm:"type:text"`
	SummaryFeedback string          `gorm:"type:text"`
	ImageURL        string          `gorm:"type:text"`
	EmbeddingValue  pgvector.Vector `gorm:"type:vector(4)"` // content-hash embedding, similarity ordering only
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}
