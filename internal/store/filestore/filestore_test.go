package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartline/internal/models"
)

func TestCredentialStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCredentialStore(dir)

	_, err := s.Get(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.Put(ctx, "alice", &models.User{
		Email:        "alice@example.com",
		Role:         models.RoleAdmin,
		PasswordHash: "$2a$10$fakehash",
	}))

	// A fresh store reading the same directory sees the record.
	reopened := NewCredentialStore(dir)
	got, err := reopened.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, "$2a$10$fakehash", got.PasswordHash)

	exists, err := reopened.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := reopened.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, reopened.Delete(ctx, "alice"))
	assert.ErrorIs(t, reopened.Delete(ctx, "alice"), models.ErrNotFound)
}

func TestCredentialStoreFileLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCredentialStore(dir)

	require.NoError(t, s.Put(ctx, "alice", &models.User{
		Email:        "alice@example.com",
		Role:         models.RoleViewer,
		PasswordHash: "hash",
	}))

	// The on-disk document keys records by username with the hash stored
	// under "password".
	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"alice"`)
	assert.Contains(t, content, `"password": "hash"`)
	assert.Contains(t, content, `"role": "viewer"`)
	assert.NotContains(t, content, `"username"`)
}

func TestAttemptStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewAttemptStore(dir)

	_, err := s.Get(ctx, "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "bob", &models.LoginAttempt{Count: 3, LastAttempt: at}))

	got, err := NewAttemptStore(dir).Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.True(t, got.LastAttempt.Equal(at))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Clear(ctx, "bob"))
	_, err = s.Get(ctx, "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Clearing again is a no-op.
	require.NoError(t, s.Clear(ctx, "bob"))
}

func TestAuditLogAppendOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := NewAuditLog(dir)
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	exists, err := l.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	content, err := l.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, l.Append(ctx, "User created: alice (viewer)"))
	require.NoError(t, l.Append(ctx, "Successful login: alice"))

	exists, err = l.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	content, err = l.ReadAll(ctx)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-03-01 12:00:00] User created: alice (viewer)", lines[0])
	assert.Equal(t, "[2024-03-01 12:00:00] Successful login: alice", lines[1])
}

func TestCorruptUsersFileSurfacesError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o600))

	s := NewCredentialStore(dir)
	_, err := s.Get(ctx, "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
