package mapper

import (
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.DocumentEmbedding) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:              d.Id,
		DocumentName:    d.DocumentName,
		Text:            d.Text,
		SummaryPurpose:  d.SummaryPurpose,
		SummaryResult:   d.SummaryResult,
		SummaryFeedback: d.SummaryFeedback,
		ImageURL:        d.ImageURL,
		Embedding:       d.EmbeddingValue.Slice(),
		CreatedAt:       d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.DocumentEmbedding {
	if d == nil {
		return nil
	}
	return &model.DocumentEmbedding{
		Id:              d.Id,
		DocumentName:    d.DocumentName,
		Text:            d.Text,
		SummaryPurpose:  d.SummaryPurpose,
		SummaryResult:   d.SummaryResult,
		SummaryFeedback: d.SummaryFeedback,
		ImageURL:        d.ImageURL,
		EmbeddingValue:  pgvector.NewVector(d.Embedding),
		CreatedAt:       d.CreatedAt,
	}
}
