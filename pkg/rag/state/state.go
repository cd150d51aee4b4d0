package state

import (
	"review-rag-be/internal/entity"
	"review-rag-be/pkg/llm"
)

// PipelineState is threaded through the stages of a single run.
type PipelineState struct {
	UserMessage        string
	History            []entity.ConversationMessage
	RetrievedDocuments []entity.RetrievedDocument
	GeneratedResponse  string
	Messages           []llm.Message
}

// Update carries only the fields a stage owns. Nil fields are left untouched.
type Update struct {
	RetrievedDocuments *[]entity.RetrievedDocument
	GeneratedResponse  *string
	Messages           *[]llm.Message
}

func New(userMessage string, history []entity.ConversationMessage) PipelineState {
	return PipelineState{
		UserMessage:        userMessage,
		History:            history,
		RetrievedDocuments: []entity.RetrievedDocument{},
	}
}

// Apply returns a copy of s with the non-nil fields of u merged in.
func (s PipelineState) Apply(u Update) PipelineState {
	if u.RetrievedDocuments != nil {
		s.RetrievedDocuments = *u.RetrievedDocuments
	}
	if u.GeneratedResponse != nil {
		s.GeneratedResponse = *u.GeneratedResponse
	}
	if u.Messages != nil {
		s.Messages = *u.Messages
	}
	return s
}

func WithRetrievedDocuments(docs []entity.RetrievedDocument) Update {
	if docs == nil {
		docs = []entity.RetrievedDocument{}
	}
	return Update{RetrievedDocuments: &docs}
}

func WithGeneratedResponse(response string) Update {
	return Update{GeneratedResponse: &response}
}

func WithMessages(messages []llm.Message) Update {
	return Update{Messages: &messages}
}
