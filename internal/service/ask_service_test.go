// FILE: internal/service/ask_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/rag/pipeline"
	"ai-docchat-be/pkg/similarity"
	"ai-docchat-be/pkg/stream"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeConversationRepo struct {
	created []*entity.Conversation
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	r.created = append(r.created, c)
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	return nil, nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	return nil, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct {
	conversations *fakeConversationRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return u.conversations
}

func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository { return nil }

func (u *fakeUnitOfWork) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return nil
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakePublisher struct {
	published [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.published = append(p.published, payload)
	return nil
}

type emptyStore struct{}

func (emptyStore) Search(ctx context.Context, queryVector []float32, limit int) ([]docstore.ScoredDocument, error) {
	return nil, nil
}

func (emptyStore) Scan(ctx context.Context, limit int) ([]docstore.Document, error) {
	return nil, nil
}

func newTestAskService() IAskService {
	return NewAskService(
		&fakeUowFactory{uow: &fakeUnitOfWork{conversations: &fakeConversationRepo{}}},
		stream.NewManager(nopLogger{}),
		nil,
		emptyStore{},
		embedding.NewHashProvider(),
		similarity.NewEngine(),
		nil,
		&fakePublisher{},
		nopLogger{},
		config.ImageConfig{BaseURL: "http://images.local", PathPrefix: "/analysis"},
	)
}

func TestAskSurfacesStageFailureDetail(t *testing.T) {
	svc := newTestAskService()

	_, err := svc.Ask(context.Background(), uuid.New(), &dto.AskRequest{Question: "   "})
	require.Error(t, err)

	// The stage error must survive to the caller instead of being collapsed
	// into a generic "no answer" message.
	var stageErr *pipeline.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, pipeline.StageInit, stageErr.Stage)
	assert.Contains(t, err.Error(), "question is empty")
	assert.NotContains(t, err.Error(), "did not produce an answer")
}
