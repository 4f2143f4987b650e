package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/prompt"
	"ai-docchat-be/pkg/rag/retrieval"
	"ai-docchat-be/pkg/similarity"
	"ai-docchat-be/pkg/stream"
)

const (
	// Result counts per retrieval mode. The raw question casts a wider net
	// than each individual keyword.
	questionSearchLimit = 5
	keywordSearchLimit  = 3

	// maxKeywordSet caps the keyword list after deduplication, question
	// included.
	maxKeywordSet = 20

	// degradedExcerptLength bounds the document excerpt embedded in the
	// templated fallback answer.
	degradedExcerptLength = 200

	// Rerank weights combining the retrieval score with lexical relevance.
	rerankScoreWeight     = 0.6
	rerankRelevanceWeight = 0.4

	answerMode = "search"
)

// Retriever produces candidates for one query string. Satisfied by
// *retrieval.Adapter.
type Retriever interface {
	Search(ctx context.Context, query, mode string, limit int) []retrieval.Candidate
}

// ImageConfig locates the rendered page image for a source document.
type ImageConfig struct {
	BaseURL    string
	PathPrefix string
}

// Orchestrator runs one question through the staged pipeline, publishing
// progress to the stream session as it goes. The LLM provider may be nil, in
// which case every model call degrades to a templated substitute.
type Orchestrator struct {
	retriever Retriever
	engine    *similarity.Engine
	llm       llm.LLMProvider
	sink      stream.EventSink
	logger    logger.ILogger
	images    ImageConfig
}

func NewOrchestrator(retriever Retriever, engine *similarity.Engine, provider llm.LLMProvider, sink stream.EventSink, log logger.ILogger, images ImageConfig) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		engine:    engine,
		llm:       provider,
		sink:      sink,
		logger:    log,
		images:    images,
	}
}

// Run executes the full state machine for one question. Only the init and
// keyword stages can fail the run; retrieval, rerank and answer degrade in
// place. The caller owns the session and closes it when Run returns.
func (o *Orchestrator) Run(ctx context.Context, question string, sess *stream.Session) (*State, error) {
	state := &State{SessionID: sess.ID}

	stages := []struct {
		tag string
		fn  func(context.Context, *State, *stream.Session) *StageError
	}{
		{StageInit, o.stageInit(question)},
		{StageKeywords, o.stageKeywords},
		{StageRetrieve, o.stageRetrieve},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fatalError(stage.tag, err)
		}
		if serr := stage.fn(ctx, state, sess); serr != nil {
			if serr.Fatal {
				return nil, serr
			}
			o.logger.Warn("Pipeline", "Stage degraded", map[string]interface{}{
				"session_id": sess.ID,
				"stage":      serr.Stage,
				"error":      serr.Err.Error(),
			})
		}
	}

	if Judge(state.Pool) {
		o.stageRerank(state, sess)
		o.stageAnswer(ctx, state, sess)
	} else {
		o.stagePlainAnswer(state, sess)
	}

	return state, nil
}

func (o *Orchestrator) stageInit(question string) func(context.Context, *State, *stream.Session) *StageError {
	return func(ctx context.Context, state *State, sess *stream.Session) *StageError {
		o.emit(sess, StageInit, stream.StatusStarted, map[string]interface{}{
			"message": "Initialization started",
		})

		question = strings.TrimSpace(question)
		if question == "" {
			return fatalError(StageInit, errors.New("question is empty"))
		}
		state.Question = question

		o.emit(sess, StageInit, stream.StatusCompleted, map[string]interface{}{
			"message":  "Initialization completed",
			"question": question,
		})
		return nil
	}
}

func (o *Orchestrator) stageKeywords(ctx context.Context, state *State, sess *stream.Session) *StageError {
	o.emit(sess, StageKeywords, stream.StatusStarted, map[string]interface{}{
		"message":  "Keyword augmentation started",
		"question": state.Question,
	})

	if o.llm == nil {
		state.Keywords = []string{state.Question}
		o.emit(sess, StageKeywords, stream.StatusCompleted, map[string]interface{}{
			"message":        "Keyword augmentation completed (basic mode)",
			"keywords":       state.Keywords,
			"keywords_count": len(state.Keywords),
			"reason":         "language model not configured",
		})
		return nil
	}

	raw, err := o.llm.ChatStream(ctx, prompt.KeywordMessages(state.Question), func(token string) {
		o.emit(sess, StageKeywords, stream.StatusStreaming, map[string]interface{}{
			"message": "Generating keywords...",
			"content": token,
		})
	})
	if err != nil {
		// A failed keyword call never fails the pipeline; the question
		// alone is a valid keyword set.
		raw = ""
	}

	state.Keywords = augmentKeywords(state.Question, raw)

	o.emit(sess, StageKeywords, stream.StatusCompleted, map[string]interface{}{
		"message":        "Keyword augmentation completed",
		"keywords":       state.Keywords,
		"keywords_count": len(state.Keywords),
	})

	if err != nil {
		return &StageError{Stage: StageKeywords, Err: err, Fatal: false}
	}
	return nil
}

// augmentKeywords parses the model's comma-separated output into the final
// keyword set: question first, duplicates removed in order, capped.
func augmentKeywords(question, raw string) []string {
	keywords := []string{question}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			keywords = append(keywords, part)
		}
	}

	seen := make(map[string]struct{}, len(keywords))
	deduped := keywords[:0]
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		deduped = append(deduped, kw)
	}

	if len(deduped) > maxKeywordSet {
		deduped = deduped[:maxKeywordSet]
	}
	return deduped
}

func (o *Orchestrator) stageRetrieve(ctx context.Context, state *State, sess *stream.Session) *StageError {
	o.emit(sess, StageRetrieve, stream.StatusStarted, map[string]interface{}{
		"message":  "Document retrieval started",
		"keywords": state.Keywords,
	})

	questionCandidates := o.retriever.Search(ctx, state.Question, retrieval.ModeQuestion, questionSearchLimit)

	var keywordCandidates []retrieval.Candidate
	for _, kw := range state.Keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		keywordCandidates = append(keywordCandidates, o.retriever.Search(ctx, kw, retrieval.ModeKeyword, keywordSearchLimit)...)
	}

	state.Pool = MergeCandidates(questionCandidates, keywordCandidates)

	titles := make([]string, 0, len(state.Pool))
	results := make([]map[string]interface{}, 0, len(state.Pool))
	for i, c := range state.Pool {
		titles = append(titles, c.Payload.Title)
		if i < 5 {
			results = append(results, map[string]interface{}{
				"title":   c.Payload.Title,
				"text":    c.Payload.Text,
				"summary": c.Payload.SummaryResult,
				"score":   c.Score,
			})
		}
	}

	o.emit(sess, StageRetrieve, stream.StatusCompleted, map[string]interface{}{
		"message":         "Document retrieval completed",
		"documents_count": len(state.Pool),
		"document_titles": titles,
		"search_results":  results,
	})
	return nil
}

func (o *Orchestrator) stageRerank(state *State, sess *stream.Session) {
	o.emit(sess, StageRerank, stream.StatusStarted, map[string]interface{}{
		"message":         "Document rerank started",
		"documents_count": len(state.Pool),
	})

	ranked := make([]RankedResult, 0, len(state.Pool))
	for _, c := range state.Pool {
		docText := strings.TrimSpace(c.Payload.Title + " " + c.Payload.Text)

		relevance := c.Score
		combined := c.Score
		if docText != "" {
			relevance = o.engine.Combined(state.Question, docText)
			combined = rerankScoreWeight*c.Score + rerankRelevanceWeight*relevance
		}

		ranked = append(ranked, RankedResult{
			PooledCandidate: c,
			Relevance:       relevance,
			Combined:        combined,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Combined > ranked[j].Combined
	})
	state.Ranked = ranked

	topTitles := make([]string, 0, 3)
	for i, r := range ranked {
		if i == 3 {
			break
		}
		topTitles = append(topTitles, r.Payload.Title)
	}

	o.emit(sess, StageRerank, stream.StatusCompleted, map[string]interface{}{
		"message":         "Document rerank completed",
		"documents_count": len(ranked),
		"document_titles": topTitles,
	})
}

func (o *Orchestrator) stageAnswer(ctx context.Context, state *State, sess *stream.Session) {
	o.emit(sess, StageAnswer, stream.StatusStarted, map[string]interface{}{
		"message":              "Answer generation started",
		"search_results_count": len(state.Ranked),
	})

	top := state.Ranked[0]
	answerText := ""

	if o.llm != nil {
		grounded := prompt.GroundedAnswer(state.Question, top.Payload.Title, top.Payload.Text)
		messages := []llm.Message{{Role: "user", Content: grounded}}

		full, err := o.llm.ChatStream(ctx, messages, func(token string) {
			answerText += token
			o.emit(sess, StageAnswer, stream.StatusStreaming, map[string]interface{}{
				"message":            "Generating answer...",
				"content":            token,
				"accumulated_answer": answerText,
				"is_streaming":       true,
			})
		})
		if err != nil {
			o.logger.Error("Pipeline", "Answer generation failed", map[string]interface{}{
				"session_id": sess.ID,
				"error":      err.Error(),
			})
			answerText = o.degradedAnswer(state.Question, top.Payload, classifyLLMError(err))
		} else {
			answerText = full
		}
	} else {
		answerText = o.degradedAnswer(state.Question, top.Payload,
			"A full AI-generated analysis requires a configured language model.")
	}

	supporting := make([]string, 0, len(state.Ranked))
	for _, r := range state.Ranked {
		supporting = append(supporting, r.ID)
	}

	state.Answer = &Answer{
		Text:          answerText,
		SupportingIDs: supporting,
		Keywords:      state.Keywords,
		TopCandidate:  &top,
		ImageURL:      o.deriveImageURL(top.Payload.Title),
		Mode:          answerMode,
	}

	o.emit(sess, StageAnswer, stream.StatusCompleted, map[string]interface{}{
		"message":            "Answer generation completed",
		"answer":             answerText,
		"analysis_image_url": state.Answer.ImageURL,
		"keywords":           state.Keywords,
		"top_document": map[string]interface{}{
			"id":    top.ID,
			"title": top.Payload.Title,
			"score": top.Combined,
		},
		"is_streaming": false,
	})
}

func (o *Orchestrator) stagePlainAnswer(state *State, sess *stream.Session) {
	o.emit(sess, StageAnswer, stream.StatusStarted, map[string]interface{}{
		"message": "Fallback answer generation started",
		"reason":  "no matching documents",
	})

	state.Answer = &Answer{
		Text:     plainAnswer(state.Question, state.Keywords),
		Keywords: state.Keywords,
		Mode:     answerMode,
	}

	o.emit(sess, StageAnswer, stream.StatusCompleted, map[string]interface{}{
		"message":  "Fallback answer generation completed",
		"answer":   state.Answer.Text,
		"keywords": state.Keywords,
		"reason":   "no matching documents",
	})
}

// degradedAnswer builds the templated substitute used when the model cannot
// produce the grounded answer. The retrieved document still carries the
// response.
func (o *Orchestrator) degradedAnswer(question string, payload docstore.Payload, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is the answer to your question '%s'.\n\n", question)
	fmt.Fprintf(&b, "Reference document: %s\n\n", payload.Title)
	fmt.Fprintf(&b, "Based on the document, information related to %s was found.\n\n",
		prompt.Excerpt(payload.Text, degradedExcerptLength))
	b.WriteString("⚠️ " + note)
	return b.String()
}

// plainAnswer restates the question and keywords with generic guidance when
// retrieval produced nothing worth answering from.
func plainAnswer(question string, keywords []string) string {
	keywordInfo := "no keywords generated"
	if len(keywords) > 0 {
		shown := keywords
		if len(shown) > 5 {
			shown = shown[:5]
		}
		keywordInfo = strings.Join(shown, ", ")
	}

	var b strings.Builder
	b.WriteString("🔍 **Analysis summary**\n\n")
	fmt.Fprintf(&b, "**Question**: %s\n\n", question)
	fmt.Fprintf(&b, "**Generated keywords**: %s\n\n", keywordInfo)
	b.WriteString("**Search result**: no related documents were found.\n\n")
	b.WriteString("**Suggestions**:\n")
	b.WriteString("1. Make the question more specific, for example include a time period, team or product name\n")
	b.WriteString("2. Add domain keywords the documents are likely to use\n")
	b.WriteString("3. Check that the relevant documents have been ingested into the store\n\n")
	b.WriteString("Providing more specific details will produce a more accurate analysis.")
	return b.String()
}

// deriveImageURL maps a source document title to its rendered page image.
// Titles ending in .txt point at a "<name>_whole.jpg" render; anything else
// is used verbatim.
func (o *Orchestrator) deriveImageURL(title string) string {
	if title == "" || o.images.BaseURL == "" {
		return ""
	}
	filename := title
	if strings.HasSuffix(title, ".txt") {
		filename = strings.TrimSuffix(title, ".txt") + "_whole.jpg"
	}
	return o.images.BaseURL + o.images.PathPrefix + "/" + url.PathEscape(filename)
}

// classifyLLMError maps a model-call failure to a user-facing note embedded
// in the degraded answer.
func classifyLLMError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return "The AI service timed out. Please try again later."
	case strings.Contains(msg, "connection") || strings.Contains(msg, "connect"):
		return "The AI service could not be reached. Check the network connection and try again later."
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "auth") || strings.Contains(msg, "401"):
		return "The AI service rejected the configured credentials. Contact an administrator."
	default:
		return "An error occurred while generating the AI answer. Please try again later."
	}
}

func (o *Orchestrator) emit(sess *stream.Session, stage string, status stream.Status, result map[string]interface{}) {
	event := stream.NewNodeEvent(stage, status, result)
	sess.Send(event)
	if o.sink != nil {
		o.sink.PublishStageEvent(sess.ID, event)
	}
}
