package history

import "review-rag-be/internal/entity"

// Window returns the trailing n messages, oldest first. n <= 0 yields nil.
func Window(history []entity.ConversationMessage, n int) []entity.ConversationMessage {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return append([]entity.ConversationMessage(nil), history...)
}
