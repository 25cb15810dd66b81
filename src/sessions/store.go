package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/username/moneyfolio/src/logger"
	"github.com/username/moneyfolio/src/models"
)

// Store holds pending two-phase imports between the parse step and the
// confirm step. It is process-local and non-durable: a restart loses
// every open session, which is acceptable for the short window between
// the two phases of one interactive import.
//
// The store is bounded: once capacity is exceeded the oldest session is
// evicted. A periodic sweep additionally drops sessions older than the
// TTL so abandoned imports do not pin memory until overflow.
type Store struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	sessions map[string]*session
	order    []string // tokens in creation order, oldest first
}

type session struct {
	batches   []models.FileBatch
	createdAt time.Time
}

func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Put stores the parsed batches under a fresh token and returns it.
// If the store is over capacity the oldest session is evicted.
func (s *Store) Put(batches []models.FileBatch) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = &session{batches: batches, createdAt: s.now()}
	s.order = append(s.order, token)

	for len(s.sessions) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		if _, live := s.sessions[oldest]; live {
			delete(s.sessions, oldest)
			logger.L.Warn("Import session evicted, store over capacity", "token", oldest)
		}
	}
	return token
}

// Take retrieves and deletes the session in one step; a token can only
// ever be consumed once. Returns false for unknown, expired or already
// consumed tokens.
func (s *Store) Take(token string) ([]models.FileBatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	delete(s.sessions, token)
	s.removeFromOrder(token)
	if s.expired(sess) {
		return nil, false
	}
	return sess.batches, true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every expired session and reports how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for token, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, token)
			s.removeFromOrder(token)
			dropped++
		}
	}
	return dropped
}

// StartSweeper runs Sweep on the given interval until the context is
// cancelled. Best effort; hard eviction on overflow still applies.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					logger.L.Debug("Swept expired import sessions", "count", n)
				}
			}
		}
	}()
}

func (s *Store) expired(sess *session) bool {
	return s.ttl > 0 && s.now().Sub(sess.createdAt) > s.ttl
}

func (s *Store) removeFromOrder(token string) {
	for i, t := range s.order {
		if t == token {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
