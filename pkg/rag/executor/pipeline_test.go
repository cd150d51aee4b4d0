package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"review-rag-be/internal/entity"
	"review-rag-be/pkg/llm"
	"review-rag-be/pkg/rag/response"
	"review-rag-be/pkg/rag/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	docs      []entity.RetrievedDocument
	panics    bool
	block     bool
	gotQuery  string
	threshold float64
}

func (s *stubSearcher) Search(ctx context.Context, query string, threshold float64) []entity.RetrievedDocument {
	if s.panics {
		panic("vector index unreachable")
	}
	if s.block {
		time.Sleep(time.Second)
	}
	s.gotQuery = query
	s.threshold = threshold
	return s.docs
}

type stubResponder struct {
	mu        sync.Mutex
	reply     string
	panics    bool
	called    bool
	retrieved []entity.RetrievedDocument
	history   []entity.ConversationMessage
}

func (r *stubResponder) Generate(ctx context.Context, userMessage string, history []entity.ConversationMessage, retrieved []entity.RetrievedDocument) string {
	r.mu.Lock()
	r.called = true
	r.retrieved = retrieved
	r.history = history
	r.mu.Unlock()
	if r.panics {
		panic("model backend down")
	}
	return r.reply
}

func defaultConfig() Config {
	return Config{ScoreThreshold: 0.5, HistoryWindow: 10, StageTimeout: 5 * time.Second, FormatMessages: true}
}

func TestPipeline_RetrievedDocumentReachesGeneration(t *testing.T) {
	doc := entity.RetrievedDocument{Content: "Product: LAPTOP-001\nReview: Battery lasts all day", SourceId: "r-1", Score: 0.9}
	searcher := &stubSearcher{docs: []entity.RetrievedDocument{doc}}
	responder := &stubResponder{reply: "Yes, per r-1."}

	result := NewPipelineExecutor(searcher, responder, defaultConfig(), nil).Run(context.Background(), "Is the battery good?", nil)

	assert.Equal(t, "Is the battery good?", searcher.gotQuery)
	assert.Equal(t, 0.5, searcher.threshold)
	assert.Equal(t, []entity.RetrievedDocument{doc}, result.RetrievedDocuments)
	assert.Equal(t, []entity.RetrievedDocument{doc}, responder.retrieved)
	assert.Equal(t, "Yes, per r-1.", result.Response)
}

func TestPipeline_SearchFailureStillGenerates(t *testing.T) {
	responder := &stubResponder{reply: "I could not find reviews about that."}

	result := NewPipelineExecutor(&stubSearcher{panics: true}, responder, defaultConfig(), nil).
		Run(context.Background(), "Is it waterproof?", nil)

	require.NotNil(t, result.RetrievedDocuments)
	assert.Empty(t, result.RetrievedDocuments)
	assert.True(t, responder.called)
	assert.Empty(t, responder.retrieved)
	assert.Equal(t, "I could not find reviews about that.", result.Response)
}

func TestPipeline_GenerationFailureYieldsFallback(t *testing.T) {
	searcher := &stubSearcher{docs: []entity.RetrievedDocument{{SourceId: "r-1", Score: 0.8}}}

	result := NewPipelineExecutor(searcher, &stubResponder{panics: true}, defaultConfig(), nil).
		Run(context.Background(), "Is it loud?", nil)

	assert.Equal(t, response.FallbackMessage, result.Response)
	assert.Len(t, result.RetrievedDocuments, 1, "retrieval survives a generation failure")
}

func TestPipeline_StageTimeoutAppliesRecovery(t *testing.T) {
	cfg := defaultConfig()
	cfg.StageTimeout = 20 * time.Millisecond
	responder := &stubResponder{reply: "ok"}

	start := time.Now()
	result := NewPipelineExecutor(&stubSearcher{block: true}, responder, cfg, nil).Run(context.Background(), "q", nil)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, result.RetrievedDocuments)
	assert.Equal(t, "ok", result.Response)
}

func TestPipeline_FormatMessages(t *testing.T) {
	history := []entity.ConversationMessage{
		{Content: "Hello! How can I help?", Sender: "AI Assistant"},
		{Content: "Looking for phone reviews", Sender: entity.SenderUser},
	}

	result := NewPipelineExecutor(&stubSearcher{}, &stubResponder{reply: "PHONE-002 has a great camera."}, defaultConfig(), nil).
		Run(context.Background(), "Which has the best camera?", history)

	assert.Equal(t, []llm.Message{
		{Role: llm.RoleAssistant, Content: "Hello! How can I help?"},
		{Role: llm.RoleUser, Content: "Looking for phone reviews"},
		{Role: llm.RoleUser, Content: "Which has the best camera?"},
		{Role: llm.RoleAssistant, Content: "PHONE-002 has a great camera."},
	}, result.Messages)
}

func TestPipeline_FormatMessagesDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.FormatMessages = false

	result := NewPipelineExecutor(&stubSearcher{}, &stubResponder{reply: "ok"}, cfg, nil).Run(context.Background(), "q", nil)
	assert.Nil(t, result.Messages)
	assert.Equal(t, "ok", result.Response)
}

func TestPipeline_HistoryIsWindowed(t *testing.T) {
	cfg := defaultConfig()
	cfg.HistoryWindow = 2
	var history []entity.ConversationMessage
	for _, c := range []string{"1", "2", "3", "4"} {
		history = append(history, entity.ConversationMessage{Content: c, Sender: entity.SenderUser})
	}
	responder := &stubResponder{reply: "ok"}

	NewPipelineExecutor(&stubSearcher{}, responder, cfg, nil).Run(context.Background(), "q", history)

	require.Len(t, responder.history, 2)
	assert.Equal(t, "3", responder.history[0].Content)
}

func TestRunStage_ErrorUsesRecoveryUpdate(t *testing.T) {
	p := NewPipelineExecutor(&stubSearcher{}, &stubResponder{}, defaultConfig(), nil)
	stage := Stage{
		Name: "custom",
		Run: func(ctx context.Context, s state.PipelineState) (state.Update, error) {
			return state.WithGeneratedResponse("should be discarded"), assert.AnError
		},
		Recover: func(err error) state.Update { return state.WithGeneratedResponse("recovered") },
	}

	update := p.runStage(context.Background(), stage, state.New("q", nil))
	require.NotNil(t, update.GeneratedResponse)
	assert.Equal(t, "recovered", *update.GeneratedResponse)
	assert.Nil(t, update.RetrievedDocuments)
}
