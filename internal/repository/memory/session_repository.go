package memory

import (
	"time"

	"etp-authoring-be/pkg/flow"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps hot conversation state in memory so the database
// is only hit on state changes worth persisting.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration 1 hour, expired items purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *flow.Session) {
	r.cache.Set(session.Id, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionId string) (*flow.Session, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*flow.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
