// Package session implements the device-session core: the eviction policy
// that bounds concurrent devices per account, and the manager that turns a
// verified login into a tracked, revocable session.
package session

import (
	"sort"

	"go.pilab.hu/coursehub/domain"
)

// Plan decides which of a user's active sessions must be revoked so that,
// after the new session is created, the active count does not exceed limit.
// It is a pure function: no store access, no side effects.
//
// In single-session mode every pre-existing active session is revoked and the
// new login is the sole survivor. Otherwise the oldest sessions by created_at
// are selected, session id breaking ties for determinism. The session being
// created (newSessionID) is never selected.
func Plan(active []*domain.Session, newSessionID string, limit int, singleSession bool) []string {
	candidates := make([]*domain.Session, 0, len(active))
	for _, s := range active {
		if s.SessionID == newSessionID {
			continue
		}
		candidates = append(candidates, s)
	}

	if singleSession {
		ids := make([]string, len(candidates))
		for i, s := range candidates {
			ids[i] = s.SessionID
		}
		return ids
	}

	excess := len(candidates) + 1 - limit
	if excess <= 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].SessionID < candidates[j].SessionID
	})

	ids := make([]string, excess)
	for i := 0; i < excess; i++ {
		ids[i] = candidates[i].SessionID
	}
	return ids
}
