package memory

import (
	"time"

	"bakery-support-be/pkg/conversation"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps one conversation history per user id. Sessions are
// process-local and expire after an hour of inactivity.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(history *conversation.History) {
	r.cache.Set(history.UserID(), history, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(userID string) (*conversation.History, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*conversation.History), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
