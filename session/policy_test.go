package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.pilab.hu/coursehub/domain"
)

func sessAt(id string, createdAt time.Time) *domain.Session {
	return &domain.Session{
		SessionID: id,
		UserUUID:  "user-1",
		Role:      domain.RoleStudent,
		CreatedAt: createdAt,
	}
}

func TestPlan(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		active        []*domain.Session
		limit         int
		singleSession bool
		want          []string
	}{
		{
			name:   "under limit revokes nothing",
			active: []*domain.Session{sessAt("a", base)},
			limit:  3,
			want:   nil,
		},
		{
			name: "at limit revokes the oldest",
			active: []*domain.Session{
				sessAt("b", base.Add(time.Minute)),
				sessAt("a", base),
				sessAt("c", base.Add(2 * time.Minute)),
			},
			limit: 3,
			want:  []string{"a"},
		},
		{
			name: "over limit revokes enough oldest sessions",
			active: []*domain.Session{
				sessAt("a", base),
				sessAt("b", base.Add(time.Minute)),
				sessAt("c", base.Add(2 * time.Minute)),
				sessAt("d", base.Add(3 * time.Minute)),
			},
			limit: 2,
			want:  []string{"a", "b", "c"},
		},
		{
			name: "limit one keeps only the new login",
			active: []*domain.Session{
				sessAt("a", base),
				sessAt("b", base.Add(time.Minute)),
			},
			limit: 1,
			want:  []string{"a", "b"},
		},
		{
			name: "created_at tie broken by session id",
			active: []*domain.Session{
				sessAt("z", base),
				sessAt("a", base),
				sessAt("m", base),
			},
			limit: 3,
			want:  []string{"a"},
		},
		{
			name: "single session revokes everything regardless of limit",
			active: []*domain.Session{
				sessAt("a", base),
				sessAt("b", base.Add(time.Minute)),
			},
			limit:         5,
			singleSession: true,
			want:          []string{"a", "b"},
		},
		{
			name:          "single session with empty active set",
			active:        nil,
			limit:         5,
			singleSession: true,
			want:          []string{},
		},
		{
			name:   "empty active set under normal mode",
			active: nil,
			limit:  1,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.active, "new", tt.limit, tt.singleSession)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanNeverSelectsNewSession(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	active := []*domain.Session{
		sessAt("new", base), // oldest, but being created
		sessAt("a", base.Add(time.Minute)),
		sessAt("b", base.Add(2 * time.Minute)),
	}

	got := Plan(active, "new", 2, false)
	assert.Equal(t, []string{"a"}, got)
	assert.NotContains(t, got, "new")
}

func TestPlanIsDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	active := []*domain.Session{
		sessAt("c", base),
		sessAt("a", base),
		sessAt("b", base),
		sessAt("d", base.Add(time.Minute)),
	}

	first := Plan(active, "", 2, false)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Plan(active, "", 2, false), fmt.Sprintf("run %d", i))
	}
	assert.Equal(t, []string{"a", "b", "c"}, first)
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	active := []*domain.Session{
		sessAt("b", base.Add(time.Minute)),
		sessAt("a", base),
	}

	Plan(active, "", 1, false)
	assert.Equal(t, "b", active[0].SessionID)
	assert.Equal(t, "a", active[1].SessionID)
}
