package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-butler-be/pkg/assistant/session"
)

// SessionRepository keeps per-conversation state in process memory.
// Sessions idle for an hour are evicted.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(sess *session.Session) {
	r.cache.Set(sess.ID, sess, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*session.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*session.Session), true
	}
	return nil, false
}

// GetOrCreate returns the stored session, or registers a fresh one when
// the id is unknown or expired.
func (r *SessionRepository) GetOrCreate(sessionID string) *session.Session {
	if sess, found := r.Get(sessionID); found {
		return sess
	}
	sess := session.New()
	if sessionID != "" {
		sess.ID = sessionID
	}
	r.Save(sess)
	return sess
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
