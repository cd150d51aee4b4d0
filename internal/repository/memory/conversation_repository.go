package memory

import (
	"sync"
	"time"

	"review-rag-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ConversationRepository holds recent turns per conversation id so callers of
// the chat endpoint may send an id instead of the full history.
type ConversationRepository struct {
	cache    *cache.Cache
	maxTurns int
	mu       sync.Mutex
}

func NewConversationRepository(ttl time.Duration, maxTurns int) *ConversationRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConversationRepository{
		cache:    cache.New(ttl, 10*time.Minute),
		maxTurns: maxTurns,
	}
}

// Get returns a copy of the stored turns, oldest first.
func (r *ConversationRepository) Get(conversationId string) []entity.ConversationMessage {
	x, found := r.cache.Get(conversationId)
	if !found {
		return nil
	}
	turns := x.([]entity.ConversationMessage)
	return append([]entity.ConversationMessage(nil), turns...)
}

// Append adds turns and keeps only the newest maxTurns.
func (r *ConversationRepository) Append(conversationId string, turns ...entity.ConversationMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.Get(conversationId)
	existing = append(existing, turns...)
	if r.maxTurns > 0 && len(existing) > r.maxTurns {
		existing = existing[len(existing)-r.maxTurns:]
	}
	r.cache.Set(conversationId, existing, cache.DefaultExpiration)
}

func (r *ConversationRepository) Delete(conversationId string) {
	r.cache.Delete(conversationId)
}
