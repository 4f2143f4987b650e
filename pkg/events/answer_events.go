package events

import "time"

const (
	// EventAnswerCompleted fires after a pipeline run finishes and its answer
	// has been assembled, whether the answer was model-generated or templated.
	EventAnswerCompleted = "ANSWER_COMPLETED"
)

// NewAnswerCompletedEvent describes one finished question/answer exchange.
// Consumed by the persistence worker and mirrored to the NATS bus.
func NewAnswerCompletedEvent(conversationID, question, answer string, keywords []string, supportingIDs []string, imageURL string) Event {
	return BaseEvent{
		Type: EventAnswerCompleted,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"question":        question,
			"answer":          answer,
			"keywords":        keywords,
			"supporting_ids":  supportingIDs,
			"image_url":       imageURL,
		},
		OccurredAt: time.Now(),
	}
}
