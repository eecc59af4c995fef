// Package cache holds non-Mongo session store backings: an in-memory store
// used by the test suites, and the Redis login lock under cache/redis.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"go.pilab.hu/coursehub/domain"
)

// MemorySessionStore implements domain.SessionRepository on top of ttlcache.
// Sessions have no expiry in this design, so entries are stored with NoTTL;
// the cache is used for its concurrent map plus the optional retention cap a
// dev deployment may want.
type MemorySessionStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, *domain.Session]
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		cache: ttlcache.New[string, *domain.Session](),
	}
}

// Create implements domain.SessionRepository.
func (s *MemorySessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.Has(session.SessionID) {
		return domain.ErrDuplicateSessionID
	}
	cp := *session
	s.cache.Set(session.SessionID, &cp, ttlcache.NoTTL)
	return nil
}

// Get implements domain.SessionRepository.
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(sessionID)
	if item == nil {
		return nil, domain.ErrSessionNotFound
	}
	cp := *item.Value()
	return &cp, nil
}

// ListActive implements domain.SessionRepository. Ordered by created_at
// ascending, session id as tiebreak.
func (s *MemorySessionStore) ListActive(_ context.Context, userUUID string) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Session
	s.cache.Range(func(item *ttlcache.Item[string, *domain.Session]) bool {
		sess := item.Value()
		if sess.UserUUID == userUUID && !sess.Revoked {
			cp := *sess
			out = append(out, &cp)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out, nil
}

// Revoke implements domain.SessionRepository.
func (s *MemorySessionStore) Revoke(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(sessionID)
	if item == nil {
		return false, domain.ErrSessionNotFound
	}
	sess := item.Value()
	if sess.Revoked {
		return false, nil
	}
	sess.Revoked = true
	return true, nil
}

// RevokeAll implements domain.SessionRepository.
func (s *MemorySessionStore) RevokeAll(_ context.Context, userUUID, exceptSessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	s.cache.Range(func(item *ttlcache.Item[string, *domain.Session]) bool {
		sess := item.Value()
		if sess.UserUUID == userUUID && !sess.Revoked && sess.SessionID != exceptSessionID {
			sess.Revoked = true
			count++
		}
		return true
	})
	return count, nil
}

// Touch implements domain.SessionRepository. last_used_at never decreases.
func (s *MemorySessionStore) Touch(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(sessionID)
	if item == nil {
		return domain.ErrSessionNotFound
	}
	sess := item.Value()
	if sess.Revoked {
		return domain.ErrSessionRevoked
	}
	if at.After(sess.LastUsedAt) {
		sess.LastUsedAt = at
	}
	return nil
}

var _ domain.SessionRepository = (*MemorySessionStore)(nil)
