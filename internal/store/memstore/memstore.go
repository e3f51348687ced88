// Package memstore holds all state in process memory. It backs tests
// and is the default backend for local development.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"chartline/internal/models"
	"chartline/internal/store"
)

// CredentialStore is an in-memory store.CredentialStore.
type CredentialStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{users: make(map[string]models.User)}
}

func (s *CredentialStore) Get(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Username = username
	return &u, nil
}

func (s *CredentialStore) Put(_ context.Context, username string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	u.Username = username
	s.users[username] = u
	return nil
}

func (s *CredentialStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[username]
	return ok, nil
}

func (s *CredentialStore) All(_ context.Context) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.User, len(s.users))
	for name, u := range s.users {
		copied := u
		copied.Username = name
		out[name] = &copied
	}
	return out, nil
}

func (s *CredentialStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return models.ErrNotFound
	}
	delete(s.users, username)
	return nil
}

// AttemptStore is an in-memory store.AttemptStore.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]models.LoginAttempt
}

// NewAttemptStore creates an empty in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]models.LoginAttempt)}
}

func (s *AttemptStore) Get(_ context.Context, username string) (*models.LoginAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	a.Username = username
	return &a, nil
}

func (s *AttemptStore) Put(_ context.Context, username string, attempt *models.LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := *attempt
	a.Username = username
	s.attempts[username] = a
	return nil
}

func (s *AttemptStore) Clear(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, username)
	return nil
}

func (s *AttemptStore) All(_ context.Context) (map[string]*models.LoginAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.LoginAttempt, len(s.attempts))
	for name, a := range s.attempts {
		copied := a
		copied.Username = name
		out[name] = &copied
	}
	return out, nil
}

// AuditLog is an in-memory store.AuditLog.
type AuditLog struct {
	mu    sync.Mutex
	lines strings.Builder
	count int
	now   func() time.Time
}

// NewAuditLog creates an empty in-memory audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{now: time.Now}
}

func (l *AuditLog) Append(_ context.Context, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines.WriteString(store.FormatAuditLine(l.now(), message))
	l.count++
	return nil
}

func (l *AuditLog) ReadAll(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lines.String(), nil
}

func (l *AuditLog) Exists(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count > 0, nil
}
