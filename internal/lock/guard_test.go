package lock

import (
	"errors"
	"testing"
	"time"

	"lorehold/internal/domain"
)

func TestGuardCheckWrite(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *Manager)
		advance time.Duration
		userID  string
		wantErr bool
	}{
		{
			name:   "unlocked system passes",
			userID: "alice",
		},
		{
			name: "holder passes",
			setup: func(m *Manager) {
				m.Acquire("sys-1", "alice", 0)
			},
			userID: "alice",
		},
		{
			name: "non-holder is blocked",
			setup: func(m *Manager) {
				m.Acquire("sys-1", "bob", 0)
			},
			userID:  "alice",
			wantErr: true,
		},
		{
			name: "expired lease no longer blocks",
			setup: func(m *Manager) {
				m.Acquire("sys-1", "bob", time.Minute)
			},
			advance: 2 * time.Minute,
			userID:  "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, clk := newTestManager(t)
			if tt.setup != nil {
				tt.setup(m)
			}
			clk.Advance(tt.advance)

			err := NewGuard(m).CheckWrite("sys-1", tt.userID)
			if tt.wantErr {
				var conflict *domain.LockConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("expected LockConflictError, got %v", err)
				}
				if conflict.HolderID != "bob" {
					t.Errorf("conflict holder = %q, want bob", conflict.HolderID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
