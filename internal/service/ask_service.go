// FILE: internal/service/ask_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/pipeline"
	"ai-docchat-be/pkg/rag/prompt"
	"ai-docchat-be/pkg/rag/retrieval"
	"ai-docchat-be/pkg/similarity"
	"ai-docchat-be/pkg/stream"

	"github.com/google/uuid"
)

// conversationTitleLength bounds the auto-generated conversation title.
const conversationTitleLength = 50

// persistedDocumentsMax caps how many supporting documents are stored with
// each answer.
const persistedDocumentsMax = 5

type IAskService interface {
	// Ask runs the pipeline to completion and returns the assembled answer.
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	// StartStream kicks off a supervised pipeline run and returns the stream
	// session id the caller should drain.
	StartStream(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskStreamStartedResponse, error)
}

type askService struct {
	uowFactory       unitofwork.RepositoryFactory
	streamManager    *stream.Manager
	sink             stream.EventSink
	store            docstore.Store
	embedder         embedding.EmbeddingProvider
	engine           *similarity.Engine
	llmProvider      llm.LLMProvider
	publisherService IPublisherService
	logger           logger.ILogger
	images           config.ImageConfig
}

func NewAskService(
	uowFactory unitofwork.RepositoryFactory,
	streamManager *stream.Manager,
	sink stream.EventSink,
	store docstore.Store,
	embedder embedding.EmbeddingProvider,
	engine *similarity.Engine,
	llmProvider llm.LLMProvider,
	publisherService IPublisherService,
	log logger.ILogger,
	images config.ImageConfig,
) IAskService {
	return &askService{
		uowFactory:       uowFactory,
		streamManager:    streamManager,
		sink:             sink,
		store:            store,
		embedder:         embedder,
		engine:           engine,
		llmProvider:      llmProvider,
		publisherService: publisherService,
		logger:           log,
		images:           images,
	}
}

func (s *askService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	conversation, err := s.ensureConversation(ctx, userId, req)
	if err != nil {
		return nil, err
	}

	sess := s.streamManager.Create(uuid.NewString())
	defer s.streamManager.Remove(sess.ID)

	var (
		state  *pipeline.State
		runErr error
	)
	done := s.streamManager.Run(sess, func() error {
		state, runErr = s.newOrchestrator().Run(ctx, req.Question, sess)
		if runErr != nil {
			return runErr
		}
		s.publishAnswer(ctx, conversation.Id, userId, state)
		return nil
	})
	<-done

	if runErr != nil {
		return nil, fmt.Errorf("pipeline failed: %w", runErr)
	}
	if state == nil || state.Answer == nil {
		return nil, fmt.Errorf("pipeline did not produce an answer")
	}
	return buildAskResponse(conversation.Id, state), nil
}

func (s *askService) StartStream(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskStreamStartedResponse, error) {
	conversation, err := s.ensureConversation(ctx, userId, req)
	if err != nil {
		return nil, err
	}

	sess := s.streamManager.Create(uuid.NewString())
	question := req.Question

	// The run is deliberately detached from the request context: a consumer
	// that disconnects mid-stream does not cancel the pipeline, which still
	// finishes and persists its answer.
	runCtx := context.Background()
	s.streamManager.Run(sess, func() error {
		state, runErr := s.newOrchestrator().Run(runCtx, question, sess)
		if runErr != nil {
			return runErr
		}
		s.publishAnswer(runCtx, conversation.Id, userId, state)
		return nil
	})

	return &dto.AskStreamStartedResponse{
		SessionId:      sess.ID,
		ConversationId: conversation.Id,
	}, nil
}

// newOrchestrator assembles a per-request pipeline. The retrieval adapter is
// request-scoped because it caches the fallback corpus scan.
func (s *askService) newOrchestrator() *pipeline.Orchestrator {
	adapter := retrieval.NewAdapter(s.store, s.embedder, s.engine, s.logger)
	return pipeline.NewOrchestrator(adapter, s.engine, s.llmProvider, s.sink, s.logger, pipeline.ImageConfig{
		BaseURL:    s.images.BaseURL,
		PathPrefix: s.images.PathPrefix,
	})
}

func (s *askService) ensureConversation(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.ConversationId != nil {
		conversation, err := uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: *req.ConversationId},
			specification.ByUserID{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, fmt.Errorf("conversation %s not found", req.ConversationId)
		}
		return conversation, nil
	}

	conversation := &entity.Conversation{
		Id:     uuid.New(),
		UserId: userId,
		Title:  prompt.Excerpt(req.Question, conversationTitleLength),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// publishAnswer hands the finished run to the persistence consumer. A publish
// failure is logged, not surfaced: the caller already has the answer.
func (s *askService) publishAnswer(ctx context.Context, conversationId, userId uuid.UUID, state *pipeline.State) {
	if state == nil || state.Answer == nil {
		return
	}

	msg := dto.AnswerCompletedMessage{
		ConversationId: conversationId,
		UserId:         userId,
		Question:       state.Question,
		Answer:         state.Answer.Text,
		QMode:          state.Answer.Mode,
		Keywords:       state.Answer.Keywords,
		ImageURL:       state.Answer.ImageURL,
		Documents:      supportingDocuments(state),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("AskService", "Failed to serialize answer message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error("AskService", "Failed to publish answer message", map[string]interface{}{"error": err.Error()})
	}
}

func supportingDocuments(state *pipeline.State) []dto.SupportingDocumentMessage {
	docs := make([]dto.SupportingDocumentMessage, 0, persistedDocumentsMax)
	for i, r := range state.Ranked {
		if i == persistedDocumentsMax {
			break
		}
		docs = append(docs, dto.SupportingDocumentMessage{
			Title:    r.Payload.Title,
			Text:     r.Payload.Text,
			Summary:  r.Payload.SummaryResult,
			ImageURL: r.Payload.ImageURL,
			Score:    r.Combined,
		})
	}
	return docs
}

func buildAskResponse(conversationId uuid.UUID, state *pipeline.State) *dto.AskResponse {
	docs := make([]dto.SupportingDocumentResponse, 0, len(state.Ranked))
	for i, r := range state.Ranked {
		if i == persistedDocumentsMax {
			break
		}
		docs = append(docs, dto.SupportingDocumentResponse{
			Title:    r.Payload.Title,
			Summary:  r.Payload.SummaryResult,
			ImageURL: r.Payload.ImageURL,
			Score:    r.Combined,
		})
	}

	return &dto.AskResponse{
		ConversationId: conversationId,
		Answer:         state.Answer.Text,
		Keywords:       state.Answer.Keywords,
		QMode:          state.Answer.Mode,
		ImageURL:       state.Answer.ImageURL,
		Documents:      docs,
	}
}
