package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartline/internal/models"
)

func TestCredentialStore(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()

	_, err := s.Get(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)

	exists, err := s.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Put(ctx, "alice", &models.User{
		Email:        "alice@example.com",
		Role:         models.RoleViewer,
		PasswordHash: "hash",
	}))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, models.RoleViewer, got.Role)

	exists, err = s.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	// Put replaces wholesale.
	require.NoError(t, s.Put(ctx, "alice", &models.User{
		Email: "new@example.com",
		Role:  models.RoleAdmin,
	}))
	got, err = s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Delete(ctx, "alice"))
	assert.ErrorIs(t, s.Delete(ctx, "alice"), models.ErrNotFound)
}

func TestCredentialStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()

	require.NoError(t, s.Put(ctx, "alice", &models.User{Email: "a@x.com"}))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	got.Email = "mutated@x.com"

	again, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", again.Email)
}

func TestAttemptStore(t *testing.T) {
	ctx := context.Background()
	s := NewAttemptStore()

	_, err := s.Get(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.Put(ctx, "alice", &models.LoginAttempt{
		Count:       2,
		LastAttempt: time.Now(),
	}))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "alice", got.Username)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Clear(ctx, "alice"))
	_, err = s.Get(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Clearing an absent record is a no-op.
	require.NoError(t, s.Clear(ctx, "alice"))
}

func TestAuditLog(t *testing.T) {
	ctx := context.Background()
	l := NewAuditLog()
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	exists, err := l.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, l.Append(ctx, "Successful login: alice"))
	require.NoError(t, l.Append(ctx, "Failed login attempt for username: bob"))

	content, err := l.ReadAll(ctx)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-03-01 12:00:00] Successful login: alice", lines[0])
	assert.Equal(t, "[2024-03-01 12:00:00] Failed login attempt for username: bob", lines[1])

	exists, err = l.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}
