package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/llm"
	"review-rag-be/pkg/rag/history"
	"review-rag-be/pkg/rag/response"
	"review-rag-be/pkg/rag/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	StageRetrieveDocuments = "retrieve_documents"
	StageGenerateResponse  = "generate_response"
	StageFormatMessages    = "format_messages"
)

var ErrStagePanicked = errors.New("stage panicked")

type Searcher interface {
	Search(ctx context.Context, query string, threshold float64) []entity.RetrievedDocument
}

type Responder interface {
	Generate(ctx context.Context, userMessage string, history []entity.ConversationMessage, retrieved []entity.RetrievedDocument) string
}

// StageFunc reads the full state and returns only the fields it owns.
type StageFunc func(ctx context.Context, s state.PipelineState) (state.Update, error)

type Stage struct {
	Name string
	Run  StageFunc
	// Recover supplies the update applied when Run fails, panics or times out.
	Recover func(err error) state.Update
}

type Config struct {
	ScoreThreshold float64
	HistoryWindow  int
	StageTimeout   time.Duration
	FormatMessages bool
}

type Result struct {
	Response           string
	RetrievedDocuments []entity.RetrievedDocument
	Messages           []llm.Message
}

// PipelineExecutor runs retrieve_documents -> generate_response ->
// [format_messages]. It holds no per-run state and is safe for concurrent use.
type PipelineExecutor struct {
	stages []Stage
	config Config
	logger logger.ILogger
	tracer trace.Tracer
}

func NewPipelineExecutor(searcher Searcher, responder Responder, config Config, log logger.ILogger) *PipelineExecutor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	p := &PipelineExecutor{
		config: config,
		logger: log,
		tracer: otel.Tracer("review-rag-be/pkg/rag/executor"),
	}

	p.stages = []Stage{
		{
			Name: StageRetrieveDocuments,
			Run: func(ctx context.Context, s state.PipelineState) (state.Update, error) {
				return state.WithRetrievedDocuments(searcher.Search(ctx, s.UserMessage, config.ScoreThreshold)), nil
			},
			Recover: func(error) state.Update {
				return state.WithRetrievedDocuments([]entity.RetrievedDocument{})
			},
		},
		{
			Name: StageGenerateResponse,
			Run: func(ctx context.Context, s state.PipelineState) (state.Update, error) {
				return state.WithGeneratedResponse(responder.Generate(ctx, s.UserMessage, s.History, s.RetrievedDocuments)), nil
			},
			Recover: func(error) state.Update {
				return state.WithGeneratedResponse(response.FallbackMessage)
			},
		},
	}
	if config.FormatMessages {
		p.stages = append(p.stages, Stage{
			Name: StageFormatMessages,
			Run: func(ctx context.Context, s state.PipelineState) (state.Update, error) {
				return state.WithMessages(FormatMessages(s)), nil
			},
			Recover: func(error) state.Update { return state.Update{} },
		})
	}
	return p
}

// Run always returns a well-formed result; stage failures are absorbed by
// each stage's recovery update.
func (p *PipelineExecutor) Run(ctx context.Context, userMessage string, conversation []entity.ConversationMessage) *Result {
	ctx, span := p.tracer.Start(ctx, "rag.pipeline")
	defer span.End()

	s := state.New(userMessage, history.Window(conversation, p.config.HistoryWindow))

	for _, stage := range p.stages {
		s = s.Apply(p.runStage(ctx, stage, s))
	}

	retrieved := s.RetrievedDocuments
	if retrieved == nil {
		retrieved = []entity.RetrievedDocument{}
	}
	span.SetAttributes(attribute.Int("rag.retrieved_documents", len(retrieved)))

	return &Result{
		Response:           s.GeneratedResponse,
		RetrievedDocuments: retrieved,
		Messages:           s.Messages,
	}
}

func (p *PipelineExecutor) runStage(ctx context.Context, stage Stage, s state.PipelineState) state.Update {
	ctx, span := p.tracer.Start(ctx, "rag.stage."+stage.Name)
	defer span.End()

	start := time.Now()
	update, err := p.invoke(ctx, stage, s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("Pipeline", "Stage failed, applying recovery", map[string]interface{}{
			"stage": stage.Name,
			"error": err.Error(),
		})
		return stage.Recover(err)
	}

	p.logger.Debug("Pipeline", "Stage completed", map[string]interface{}{
		"stage":       stage.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return update
}

// invoke runs the stage under its deadline. A stage that ignores ctx is
// abandoned at the deadline and its late result discarded.
func (p *PipelineExecutor) invoke(ctx context.Context, stage Stage, s state.PipelineState) (state.Update, error) {
	if p.config.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.StageTimeout)
		defer cancel()
	}

	type outcome struct {
		update state.Update
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %s: %v", ErrStagePanicked, stage.Name, r)}
			}
		}()
		update, err := stage.Run(ctx, s)
		done <- outcome{update: update, err: err}
	}()

	select {
	case out := <-done:
		return out.update, out.err
	case <-ctx.Done():
		return state.Update{}, fmt.Errorf("%s: %w", stage.Name, ctx.Err())
	}
}

// FormatMessages projects history, the user message and the reply into a
// transcript. "User" turns map to the user role, anything else to assistant.
func FormatMessages(s state.PipelineState) []llm.Message {
	messages := make([]llm.Message, 0, len(s.History)+2)
	for _, m := range s.History {
		role := llm.RoleAssistant
		if m.Sender == entity.SenderUser {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	messages = append(messages,
		llm.Message{Role: llm.RoleUser, Content: s.UserMessage},
		llm.Message{Role: llm.RoleAssistant, Content: s.GeneratedResponse},
	)
	return messages
}
