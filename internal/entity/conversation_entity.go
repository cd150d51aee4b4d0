package entity

import "time"

const (
	SenderUser = "User"
	SenderAI   = "AI"
)

// ConversationMessage is one turn supplied by the conversation store.
type ConversationMessage struct {
	Content   string
	Sender    string
	Timestamp time.Time
}

// RetrievedDocument is the slice of a review exposed to generation. It is
// computed per query and never persisted.
type RetrievedDocument struct {
	Content  string
	SourceId string
	Score    float64
}
