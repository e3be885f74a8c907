package studio

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps live sessions in memory with a TTL so abandoned sessions are
// eventually evicted. There is deliberately no durable persistence.
type Store struct {
	sessions *cache.Cache
}

// NewStore creates a session store. Sessions expire ttl after their last Put.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{sessions: cache.New(ttl, ttl/2)}
}

// Put registers a session and refreshes its expiry.
func (s *Store) Put(sess *Session) {
	s.sessions.Set(sess.ID(), sess, cache.DefaultExpiration)
}

// Get looks up a live session by id.
func (s *Store) Get(id string) (*Session, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}
