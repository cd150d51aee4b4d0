package service

import (
	"context"
	"time"

	"review-rag-be/internal/dto"
	"review-rag-be/internal/entity"
	"review-rag-be/internal/repository/memory"
	"review-rag-be/pkg/rag/executor"
)

type IChatService interface {
	Reply(ctx context.Context, req *dto.ChatReplyRequest) *dto.ChatReplyResponse
}

type chatService struct {
	pipeline      *executor.PipelineExecutor
	conversations *memory.ConversationRepository
}

func NewChatService(pipeline *executor.PipelineExecutor, conversations *memory.ConversationRepository) IChatService {
	return &chatService{
		pipeline:      pipeline,
		conversations: conversations,
	}
}

// Reply never fails: the pipeline absorbs retrieval and generation errors.
// History sent in the request wins over the stored conversation.
func (s *chatService) Reply(ctx context.Context, req *dto.ChatReplyRequest) *dto.ChatReplyResponse {
	history := make([]entity.ConversationMessage, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, entity.ConversationMessage{
			Content:   m.Content,
			Sender:    m.Sender,
			Timestamp: m.Timestamp,
		})
	}
	if len(history) == 0 && req.ConversationId != "" && s.conversations != nil {
		history = s.conversations.Get(req.ConversationId)
	}

	result := s.pipeline.Run(ctx, req.UserMessage, history)

	if req.ConversationId != "" && s.conversations != nil {
		now := time.Now()
		s.conversations.Append(req.ConversationId,
			entity.ConversationMessage{Content: req.UserMessage, Sender: entity.SenderUser, Timestamp: now},
			entity.ConversationMessage{Content: result.Response, Sender: entity.SenderAI, Timestamp: now},
		)
	}

	return toChatReplyResponse(result, req.ConversationId)
}

func toChatReplyResponse(result *executor.Result, conversationId string) *dto.ChatReplyResponse {
	docs := make([]dto.RetrievedDocument, 0, len(result.RetrievedDocuments))
	for _, d := range result.RetrievedDocuments {
		docs = append(docs, dto.RetrievedDocument{Content: d.Content, SourceId: d.SourceId, Score: d.Score})
	}

	messages := make([]dto.ChatMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		messages = append(messages, dto.ChatMessage{Role: m.Role, Content: m.Content})
	}

	return &dto.ChatReplyResponse{
		Response:           result.Response,
		RetrievedDocuments: docs,
		Messages:           messages,
		ConversationId:     conversationId,
	}
}
