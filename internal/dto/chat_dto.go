package dto

import "time"

type ConversationMessage struct {
	Content   string    `json:"content" validate:"required"`
	Sender    string    `json:"sender" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReplyRequest carries the caller-held history. When ConversationId is
// set and History is empty, the server-side conversation store is used.
type ChatReplyRequest struct {
	UserMessage    string                `json:"userMessage" validate:"required"`
	History        []ConversationMessage `json:"history" validate:"dive"`
	ConversationId string                `json:"conversationId,omitempty" validate:"omitempty,max=128"`
}

type RetrievedDocument struct {
	Content  string  `json:"content"`
	SourceId string  `json:"sourceId"`
	Score    float64 `json:"score"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatReplyResponse struct {
	Response           string              `json:"response"`
	RetrievedDocuments []RetrievedDocument `json:"retrievedDocuments"`
	Messages           []ChatMessage       `json:"messages"`
	ConversationId     string              `json:"conversationId,omitempty"`
}
