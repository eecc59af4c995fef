package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/internal/metrics"
)

// maxIDAttempts bounds retries on session id collision before the failure is
// surfaced as fatal.
const maxIDAttempts = 3

// Config holds the device-limit knobs, read once at process start.
type Config struct {
	// MaxActiveDevices caps concurrent active sessions per user; the oldest
	// sessions are evicted first. Must be >= 1.
	MaxActiveDevices int
	// SingleSession makes every login revoke all prior sessions for the user,
	// overriding MaxActiveDevices entirely.
	SingleSession bool
}

// Validate reports a configuration error for a non-positive device limit.
// Fatal at startup, never recoverable per request.
func (c Config) Validate() error {
	if c.MaxActiveDevices < 1 {
		return fmt.Errorf("MAX_ACTIVE_DEVICES must be >= 1, got %d", c.MaxActiveDevices)
	}
	return nil
}

// Manager orchestrates session lifecycle against the store. It holds no
// cached session state: every login decision re-reads the user's active set,
// under a per-user lock, so two racing logins can never overshoot the limit.
type Manager struct {
	store domain.SessionRepository
	locks Locker
	cfg   Config
	now   func() time.Time
}

// NewManager creates a Manager. locks may be shared with other components
// that serialize on user uuid.
func NewManager(store domain.SessionRepository, locks Locker, cfg Config) *Manager {
	return &Manager{
		store: store,
		locks: locks,
		cfg:   cfg,
		now:   time.Now,
	}
}

// LoginInput carries the identity from credential verification plus optional
// device provenance captured at login.
type LoginInput struct {
	UserUUID   string
	Role       domain.Role
	DeviceName string
	UserAgent  string
	IPAddress  string
}

// Login creates a session for a verified login, evicting older sessions as
// the policy dictates. The read-plan-write sequence runs under the per-user
// lock; logins for different users never contend.
func (m *Manager) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	unlock, err := m.locks.Lock(ctx, in.UserUUID)
	if err != nil {
		return nil, fmt.Errorf("acquire user lock: %w", err)
	}
	defer unlock()

	active, err := m.store.ListActive(ctx, in.UserUUID)
	if err != nil {
		return nil, err
	}

	evict := Plan(active, "", m.cfg.MaxActiveDevices, m.cfg.SingleSession)
	if len(evict) > 0 && !m.cfg.SingleSession {
		metrics.DeviceLimitHitsTotal.Inc()
	}
	for _, id := range evict {
		changed, err := m.store.Revoke(ctx, id)
		if err != nil {
			return nil, err
		}
		if changed {
			metrics.SessionsRevokedTotal.Inc()
			metrics.SessionEvictionsTotal.Inc()
			metrics.ActiveSessionsGauge.Dec()
		}
	}

	now := m.now().UTC()
	s := &domain.Session{
		UserUUID:   in.UserUUID,
		Role:       in.Role,
		DeviceName: in.DeviceName,
		UserAgent:  in.UserAgent,
		IPAddress:  in.IPAddress,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		s.SessionID = uuid.NewString()
		err = m.store.Create(ctx, s)
		if err == nil {
			metrics.SessionsCreatedTotal.Inc()
			metrics.ActiveSessionsGauge.Inc()
			log.Debug().
				Str("user_uuid", in.UserUUID).
				Str("session_id", s.SessionID).
				Int("evicted", len(evict)).
				Msg("session created")
			return s, nil
		}
		if !errors.Is(err, domain.ErrDuplicateSessionID) {
			return nil, err
		}
		log.Warn().Str("session_id", s.SessionID).Msg("session id collision, regenerating")
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrIDExhausted, maxIDAttempts)
}

// Logout revokes exactly one session. Reports whether a change was made; a
// second logout of the same session reports false without error. Unknown ids
// fail with domain.ErrSessionNotFound. Needs no user lock: revocation is a
// compare-and-set on the single record and only ever shrinks the active set.
func (m *Manager) Logout(ctx context.Context, sessionID string) (bool, error) {
	changed, err := m.store.Revoke(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if changed {
		metrics.SessionsRevokedTotal.Inc()
		metrics.ActiveSessionsGauge.Dec()
	}
	return changed, nil
}

// LogoutAll revokes every active session for the user and returns the count.
// Serialized against logins for the same user.
func (m *Manager) LogoutAll(ctx context.Context, userUUID string) (int64, error) {
	unlock, err := m.locks.Lock(ctx, userUUID)
	if err != nil {
		return 0, fmt.Errorf("acquire user lock: %w", err)
	}
	defer unlock()

	count, err := m.store.RevokeAll(ctx, userUUID, "")
	if err != nil {
		return 0, err
	}
	metrics.SessionsRevokedTotal.Add(float64(count))
	metrics.ActiveSessionsGauge.Sub(float64(count))
	return count, nil
}

// ListSessions returns the user's active sessions, oldest first, for a
// "my devices" view.
func (m *Manager) ListSessions(ctx context.Context, userUUID string) ([]*domain.Session, error) {
	return m.store.ListActive(ctx, userUUID)
}

// Validate is the gate called on every authenticated request. A revoked or
// unknown session yields ErrSessionInvalid, which the request layer treats as
// unauthenticated; this is how logout and device-limit eviction take effect
// even while the signed token is still cryptographically valid.
func (m *Manager) Validate(ctx context.Context, sessionID string) (domain.Identity, error) {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Identity{}, ErrSessionInvalid
		}
		return domain.Identity{}, err
	}
	if s.Revoked {
		return domain.Identity{}, ErrSessionInvalid
	}

	// Best effort: a lost last_used_at update is acceptable, a lost
	// revocation is not. Revocation was checked above against the store.
	if err := m.store.Touch(ctx, sessionID, m.now().UTC()); err != nil &&
		!errors.Is(err, domain.ErrSessionRevoked) {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("session touch failed")
	}

	return domain.Identity{
		UserUUID:  s.UserUUID,
		Role:      s.Role,
		SessionID: s.SessionID,
	}, nil
}
