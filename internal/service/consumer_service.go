// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService persists finished answers arriving on the in-process bus
// and mirrors them to the NATS event stream.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AnswerCompletedMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal answer message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Persisting answer for conversation %s", payload.ConversationId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}

	questionRow := &entity.Message{
		Id:             uuid.New(),
		ConversationId: payload.ConversationId,
		Role:           "user",
		Question:       payload.Question,
		QMode:          payload.QMode,
		CreatedAt:      time.Now(),
	}
	answerRow := &entity.Message{
		Id:             uuid.New(),
		ConversationId: payload.ConversationId,
		Role:           "assistant",
		Question:       payload.Question,
		Answer:         payload.Answer,
		QMode:          payload.QMode,
		Keywords:       payload.Keywords,
		DBContents:     toSupportingDocuments(payload.Documents),
		ImageURL:       payload.ImageURL,
		CreatedAt:      time.Now(),
	}

	if err := uow.MessageRepository().Create(ctx, questionRow); err != nil {
		log.Printf("[ERROR] Failed to persist question row: %v", err)
		uow.Rollback()
		msg.Nack()
		return
	}
	if err := uow.MessageRepository().Create(ctx, answerRow); err != nil {
		log.Printf("[ERROR] Failed to persist answer row: %v", err)
		uow.Rollback()
		msg.Nack()
		return
	}
	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit answer persistence: %v", err)
		msg.Nack()
		return
	}

	// Mirror to the NATS bus for external consumers (analytics, audit).
	if cs.eventPublisher != nil {
		evt := events.NewAnswerCompletedEvent(
			payload.ConversationId.String(),
			payload.Question,
			payload.Answer,
			payload.Keywords,
			documentTitles(payload.Documents),
			payload.ImageURL,
		)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			// Non-fatal: the answer is already persisted.
			log.Printf("[WARN] Failed to mirror answer event to NATS: %v", err)
		}
	}

	msg.Ack()
}

func toSupportingDocuments(docs []dto.SupportingDocumentMessage) []entity.SupportingDocument {
	out := make([]entity.SupportingDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, entity.SupportingDocument{
			Title:    d.Title,
			Text:     d.Text,
			Summary:  d.Summary,
			ImageURL: d.ImageURL,
			Score:    d.Score,
		})
	}
	return out
}

func documentTitles(docs []dto.SupportingDocumentMessage) []string {
	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		titles = append(titles, d.Title)
	}
	return titles
}
