// FILE: internal/service/notifier_service.go
package service

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
)

// answerNotifierDurable names the persistent NATS consumer so redeploys
// resume from the last acknowledged event.
const answerNotifierDurable = "docchat-answer-notifier"

// INotifierService relays durable answer-completed events to connected
// websocket observers.
type INotifierService interface {
	Start() error
}

type notifierService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewNotifierService(subscriber *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) INotifierService {
	return &notifierService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *notifierService) Start() error {
	if s.subscriber == nil {
		return fmt.Errorf("notifier requires a NATS subscriber")
	}

	subject := fmt.Sprintf("events.%s", events.EventAnswerCompleted)
	return s.subscriber.Subscribe(subject, answerNotifierDurable, s.handleAnswerCompleted)
}

func (s *notifierService) handleAnswerCompleted(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	s.logger.Info("NotifierService", "Answer completed, notifying observers", map[string]interface{}{
		"conversation_id": payload["conversation_id"],
	})

	s.hub.NotifyAnswerReady(payload)
	return nil
}
