package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/retrieval"
	"ai-docchat-be/pkg/similarity"
	"ai-docchat-be/pkg/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeRetriever struct {
	byMode map[string][]retrieval.Candidate
	calls  int
}

func (r *fakeRetriever) Search(ctx context.Context, query, mode string, limit int) []retrieval.Candidate {
	r.calls++
	return r.byMode[mode]
}

// fakeLLM scripts the streamed responses per call, failing once the script
// runs out or when an error is scheduled.
type fakeLLM struct {
	tokens    [][]string
	errs      []error
	callCount int
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, onToken llm.TokenHandler, options ...llm.Option) (string, error) {
	idx := f.callCount
	f.callCount++

	var full strings.Builder
	if idx < len(f.tokens) {
		for _, tok := range f.tokens[idx] {
			onToken(tok)
			full.WriteString(tok)
		}
	}
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	return full.String(), nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.ChatStream(ctx, history, func(string) {}, options...)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.ChatStream(ctx, []llm.Message{{Role: "user", Content: prompt}}, func(string) {}, options...)
}

func newOrchestrator(r Retriever, provider llm.LLMProvider) *Orchestrator {
	return NewOrchestrator(r, similarity.NewEngine(), provider, nil, nopLogger{}, ImageConfig{
		BaseURL:    "http://images.local",
		PathPrefix: "/analysis",
	})
}

func drain(sess *stream.Session) []*stream.NodeEvent {
	var events []*stream.NodeEvent
	for ev := range sess.Events() {
		if ev == nil {
			break
		}
		events = append(events, ev)
	}
	return events
}

func TestRunDegradedProviderWithStrongMatch(t *testing.T) {
	r := &fakeRetriever{byMode: map[string][]retrieval.Candidate{
		retrieval.ModeQuestion: {
			{ID: "D1", Score: 0.8, Payload: docstore.Payload{Title: "vacation_policy.txt", Text: "Employees accrue 15 days of paid vacation per year."}},
			{ID: "D2", Score: 0.2, Payload: docstore.Payload{Title: "dress_code.txt", Text: "Business casual."}},
		},
	}}

	orch := newOrchestrator(r, nil)
	sess := stream.NewSession("s-1")

	state, err := orch.Run(context.Background(), "vacation policy", sess)
	require.NoError(t, err)
	sess.Close()

	assert.Equal(t, []string{"vacation policy"}, state.Keywords)
	require.Len(t, state.Ranked, 2)
	assert.Equal(t, "D1", state.Ranked[0].ID)

	require.NotNil(t, state.Answer)
	assert.Contains(t, state.Answer.Text, "vacation_policy.txt")
	assert.Contains(t, state.Answer.Text, "vacation policy")
	assert.Equal(t, []string{"D1", "D2"}, state.Answer.SupportingIDs)
	assert.Equal(t, "http://images.local/analysis/vacation_policy_whole.jpg", state.Answer.ImageURL)

	// Keyword mode never queried: the only keyword equals the question,
	// but it still runs through keyword search; question mode ran once.
	assert.GreaterOrEqual(t, r.calls, 1)
}

func TestRunEmptyStoreProducesPlainAnswer(t *testing.T) {
	r := &fakeRetriever{byMode: map[string][]retrieval.Candidate{}}

	orch := newOrchestrator(r, nil)
	sess := stream.NewSession("s-2")

	state, err := orch.Run(context.Background(), "quarterly revenue", sess)
	require.NoError(t, err)
	sess.Close()

	assert.Empty(t, state.Pool)
	assert.Empty(t, state.Ranked)
	require.NotNil(t, state.Answer)
	assert.Contains(t, state.Answer.Text, "quarterly revenue")
	assert.Contains(t, state.Answer.Text, "no related documents")
	assert.Nil(t, state.Answer.TopCandidate)
	assert.Empty(t, state.Answer.ImageURL)
}

func TestRunKeywordStreamFailureDegrades(t *testing.T) {
	r := &fakeRetriever{byMode: map[string][]retrieval.Candidate{
		retrieval.ModeQuestion: {
			{ID: "D1", Score: 0.6, Payload: docstore.Payload{Title: "onboarding.txt", Text: "New hire onboarding checklist."}},
		},
		retrieval.ModeKeyword: {
			{ID: "D1", Score: 0.3, Payload: docstore.Payload{Title: "onboarding.txt", Text: "New hire onboarding checklist."}},
		},
	}}
	provider := &fakeLLM{
		tokens: [][]string{{"onboar", "ding, "}, {"The onboarding checklist covers accounts and equipment."}},
		errs:   []error{errors.New("connection reset mid-stream"), nil},
	}

	orch := newOrchestrator(r, provider)
	sess := stream.NewSession("s-3")

	state, err := orch.Run(context.Background(), "how does onboarding work", sess)
	require.NoError(t, err, "keyword failure must not fail the run")
	sess.Close()

	assert.Equal(t, []string{"how does onboarding work"}, state.Keywords)
	require.NotNil(t, state.Answer)
	assert.Equal(t, "The onboarding checklist covers accounts and equipment.", state.Answer.Text)
	assert.Equal(t, 2, provider.callCount)
}

func TestRunSameDocumentAcrossQueriesPools(t *testing.T) {
	r := &fakeRetriever{byMode: map[string][]retrieval.Candidate{
		retrieval.ModeQuestion: {
			{ID: "D1", Score: 0.5, Payload: docstore.Payload{Title: "roadmap.txt", Text: "2026 product roadmap."}},
		},
		retrieval.ModeKeyword: {
			{ID: "D1", Score: 0.5, Payload: docstore.Payload{Title: "other_title.txt", Text: "ignored"}},
		},
	}}

	orch := newOrchestrator(r, nil)
	sess := stream.NewSession("s-4")

	state, err := orch.Run(context.Background(), "product roadmap", sess)
	require.NoError(t, err)
	sess.Close()

	require.Len(t, state.Pool, 1)
	assert.InDelta(t, 1.0, state.Pool[0].Score, 1e-9)
	assert.Equal(t, "roadmap.txt", state.Pool[0].Payload.Title)
}

func TestRunEmitsOrderedStageEvents(t *testing.T) {
	r := &fakeRetriever{byMode: map[string][]retrieval.Candidate{
		retrieval.ModeQuestion: {
			{ID: "D1", Score: 0.9, Payload: docstore.Payload{Title: "handbook.txt", Text: "Company handbook."}},
		},
	}}
	provider := &fakeLLM{
		tokens: [][]string{{"hand", "book"}, {"See ", "the ", "handbook."}},
	}

	orch := newOrchestrator(r, provider)
	sess := stream.NewSession("s-5")

	_, err := orch.Run(context.Background(), "where is the handbook", sess)
	require.NoError(t, err)
	sess.Close()

	events := drain(sess)
	require.NotEmpty(t, events)

	var transitions []string
	for _, ev := range events {
		if ev.Status == stream.StatusStreaming {
			continue
		}
		transitions = append(transitions, ev.Stage+":"+string(ev.Status))
	}
	assert.Equal(t, []string{
		"A:started", "A:completed",
		"B:started", "B:completed",
		"C:started", "C:completed",
		"D:started", "D:completed",
		"E:started", "E:completed",
	}, transitions)

	// Answer tokens arrive in order between E:started and E:completed.
	var answerTokens []string
	for _, ev := range events {
		if ev.Stage == StageAnswer && ev.Status == stream.StatusStreaming {
			answerTokens = append(answerTokens, ev.Result["content"].(string))
		}
	}
	assert.Equal(t, []string{"See ", "the ", "handbook."}, answerTokens)
}

func TestRunEmptyQuestionIsFatal(t *testing.T) {
	orch := newOrchestrator(&fakeRetriever{}, nil)
	sess := stream.NewSession("s-6")

	_, err := orch.Run(context.Background(), "   ", sess)
	sess.Close()

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Fatal)
	assert.Equal(t, StageInit, serr.Stage)
}

func TestAugmentKeywords(t *testing.T) {
	tests := []struct {
		name     string
		question string
		raw      string
		want     []string
	}{
		{
			name:     "empty output degrades to question",
			question: "q",
			raw:      "",
			want:     []string{"q"},
		},
		{
			name:     "parses and trims",
			question: "q",
			raw:      " alpha , beta ,, gamma ",
			want:     []string{"q", "alpha", "beta", "gamma"},
		},
		{
			name:     "dedupes keeping first occurrence",
			question: "q",
			raw:      "alpha, q, alpha, beta",
			want:     []string{"q", "alpha", "beta"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := augmentKeywords(tt.question, tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.question, got[0])
		})
	}
}

func TestAugmentKeywordsCap(t *testing.T) {
	parts := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		parts = append(parts, strings.Repeat("k", i+1))
	}
	got := augmentKeywords("question", strings.Join(parts, ","))
	assert.Len(t, got, maxKeywordSet)
	assert.Equal(t, "question", got[0])
}

func TestClassifyLLMError(t *testing.T) {
	assert.Contains(t, classifyLLMError(errors.New("dial tcp: connection refused")), "could not be reached")
	assert.Contains(t, classifyLLMError(errors.New("request timeout exceeded")), "timed out")
	assert.Contains(t, classifyLLMError(errors.New("401 unauthorized")), "credentials")
	assert.Contains(t, classifyLLMError(errors.New("boom")), "error occurred")
	assert.Contains(t, classifyLLMError(context.DeadlineExceeded), "timed out")
}

func TestDeriveImageURL(t *testing.T) {
	orch := newOrchestrator(&fakeRetriever{}, nil)

	assert.Equal(t, "http://images.local/analysis/report_whole.jpg", orch.deriveImageURL("report.txt"))
	assert.Equal(t, "http://images.local/analysis/diagram.png", orch.deriveImageURL("diagram.png"))
	assert.Equal(t, "http://images.local/analysis/%EB%B3%B4%EA%B3%A0%EC%84%9C_whole.jpg", orch.deriveImageURL("보고서.txt"))
	assert.Empty(t, orch.deriveImageURL(""))
}
