package mapper

import (
	"encoding/json"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var keywords []string
	if len(msg.Keywords) > 0 {
		_ = json.Unmarshal(msg.Keywords, &keywords)
	}

	var dbContents []entity.SupportingDocument
	if len(msg.DBContents) > 0 {
		_ = json.Unmarshal(msg.DBContents, &dbContents)
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Question:       msg.Question,
		Answer:         msg.Answer,
		QMode:          msg.QMode,
		Keywords:       keywords,
		DBContents:     dbContents,
		ImageURL:       msg.ImageURL,
		Feedback:       msg.Feedback,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var keywords datatypes.JSON
	if len(msg.Keywords) > 0 {
		if data, err := json.Marshal(msg.Keywords); err == nil {
			keywords = data
		}
	}

	var dbContents datatypes.JSON
	if len(msg.DBContents) > 0 {
		if data, err := json.Marshal(msg.DBContents); err == nil {
			dbContents = data
		}
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Question:       msg.Question,
		Answer:         msg.Answer,
		QMode:          msg.QMode,
		Keywords:       keywords,
		DBContents:     dbContents,
		ImageURL:       msg.ImageURL,
		Feedback:       msg.Feedback,
		CreatedAt:      msg.CreatedAt,
	}
}
