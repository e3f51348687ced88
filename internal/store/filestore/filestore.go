// Package filestore persists state as JSON files in a data directory:
// users.json, failed_attempts.json and an append-only audit.log. Each
// operation reads or rewrites the whole file; with a handful of
// interactive users that is the deployment target, the last writer to a
// key wins and no cross-process locking is attempted.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chartline/internal/models"
	"chartline/internal/store"
)

const (
	usersFile    = "users.json"
	attemptsFile = "failed_attempts.json"
	auditFile    = "audit.log"
)

// jsonFile serializes access to one JSON document holding a map keyed by
// username.
type jsonFile[T any] struct {
	mu   sync.Mutex
	path string
}

func (f *jsonFile[T]) load() (map[string]T, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	out := map[string]T{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return out, nil
}

func (f *jsonFile[T]) save(entries map[string]T) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}

// CredentialStore is a users.json-backed store.CredentialStore.
type CredentialStore struct {
	file jsonFile[models.User]
}

// NewCredentialStore creates a credential store rooted at dataDir.
func NewCredentialStore(dataDir string) *CredentialStore {
	return &CredentialStore{file: jsonFile[models.User]{path: filepath.Join(dataDir, usersFile)}}
}

func (s *CredentialStore) Get(_ context.Context, username string) (*models.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	users, err := s.file.load()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Username = username
	return &u, nil
}

func (s *CredentialStore) Put(_ context.Context, username string, user *models.User) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	users, err := s.file.load()
	if err != nil {
		return err
	}
	users[username] = *user
	return s.file.save(users)
}

func (s *CredentialStore) Exists(_ context.Context, username string) (bool, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	users, err := s.file.load()
	if err != nil {
		return false, err
	}
	_, ok := users[username]
	return ok, nil
}

func (s *CredentialStore) All(_ context.Context) (map[string]*models.User, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	users, err := s.file.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.User, len(users))
	for name, u := range users {
		copied := u
		copied.Username = name
		out[name] = &copied
	}
	return out, nil
}

func (s *CredentialStore) Delete(_ context.Context, username string) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	users, err := s.file.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; !ok {
		return models.ErrNotFound
	}
	delete(users, username)
	return s.file.save(users)
}

// AttemptStore is a failed_attempts.json-backed store.AttemptStore.
type AttemptStore struct {
	file jsonFile[models.LoginAttempt]
}

// NewAttemptStore creates an attempt store rooted at dataDir.
func NewAttemptStore(dataDir string) *AttemptStore {
	return &AttemptStore{file: jsonFile[models.LoginAttempt]{path: filepath.Join(dataDir, attemptsFile)}}
}

func (s *AttemptStore) Get(_ context.Context, username string) (*models.LoginAttempt, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	attempts, err := s.file.load()
	if err != nil {
		return nil, err
	}
	a, ok := attempts[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	a.Username = username
	return &a, nil
}

func (s *AttemptStore) Put(_ context.Context, username string, attempt *models.LoginAttempt) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	attempts, err := s.file.load()
	if err != nil {
		return err
	}
	attempts[username] = *attempt
	return s.file.save(attempts)
}

func (s *AttemptStore) Clear(_ context.Context, username string) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	attempts, err := s.file.load()
	if err != nil {
		return err
	}
	if _, ok := attempts[username]; !ok {
		return nil
	}
	delete(attempts, username)
	return s.file.save(attempts)
}

func (s *AttemptStore) All(_ context.Context) (map[string]*models.LoginAttempt, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	attempts, err := s.file.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.LoginAttempt, len(attempts))
	for name, a := range attempts {
		copied := a
		copied.Username = name
		out[name] = &copied
	}
	return out, nil
}

// AuditLog appends timestamped lines to audit.log.
type AuditLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewAuditLog creates an audit log rooted at dataDir.
func NewAuditLog(dataDir string) *AuditLog {
	return &AuditLog{path: filepath.Join(dataDir, auditFile), now: time.Now}
}

func (l *AuditLog) Append(_ context.Context, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(store.FormatAuditLine(l.now(), message)); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

func (l *AuditLog) ReadAll(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read audit log: %w", err)
	}
	return string(data), nil
}

func (l *AuditLog) Exists(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat audit log: %w", err)
	}
	return true, nil
}
