// FILE: internal/service/conversation_service.go
package service

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IConversationService interface {
	List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.ConversationResponse, error)
	History(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ConversationHistoryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
	}
}

func (s *conversationService) List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, &dto.ConversationResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

func (s *conversationService) History(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ConversationHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationId)
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := &dto.ConversationHistoryResponse{
		Conversation: dto.ConversationResponse{
			Id:        conversation.Id,
			Title:     conversation.Title,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		},
		Messages: make([]dto.MessageResponse, 0, len(messages)),
	}

	for _, m := range messages {
		docs := make([]dto.SupportingDocumentResponse, 0, len(m.DBContents))
		for _, d := range m.DBContents {
			docs = append(docs, dto.SupportingDocumentResponse{
				Title:    d.Title,
				Summary:  d.Summary,
				ImageURL: d.ImageURL,
				Score:    d.Score,
			})
		}

		history.Messages = append(history.Messages, dto.MessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Question:  m.Question,
			Answer:    m.Answer,
			QMode:     m.QMode,
			Keywords:  m.Keywords,
			Documents: docs,
			ImageURL:  m.ImageURL,
			Feedback:  m.Feedback,
			CreatedAt: m.CreatedAt,
		})
	}

	return history, nil
}

func (s *conversationService) Delete(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation %s not found", conversationId)
	}

	return uow.ConversationRepository().Delete(ctx, conversationId)
}
