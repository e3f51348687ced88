// Package pgstore implements the persistence interfaces on Postgres for
// deployments that outgrow the JSON files.
package pgstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chartline/internal/database"
	"chartline/internal/models"
	"chartline/internal/store"
)

// CredentialStore is a Postgres-backed store.CredentialStore.
type CredentialStore struct {
	pool *pgxpool.Pool
}

// NewCredentialStore creates a credential store over the given database.
func NewCredentialStore(db *database.DB) *CredentialStore {
	return &CredentialStore{pool: db.Pool}
}

func (s *CredentialStore) Get(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT username, email, role, password_hash FROM users WHERE username = $1`

	var user models.User
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.Username, &user.Email, &user.Role, &user.PasswordHash,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

func (s *CredentialStore) Put(ctx context.Context, username string, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (username) DO UPDATE
		SET email = EXCLUDED.email, role = EXCLUDED.role,
		    password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		uuid.New().String(), username, user.Email, user.Role, user.PasswordHash, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save user %q: %w", username, database.MapPostgresError(err))
	}
	return nil
}

func (s *CredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user %q: %w", username, err)
	}
	return exists, nil
}

func (s *CredentialStore) All(ctx context.Context) (map[string]*models.User, error) {
	query := `SELECT username, email, role, password_hash FROM users ORDER BY username`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]*models.User)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.Username, &user.Email, &user.Role, &user.PasswordHash); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.Username] = &user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (s *CredentialStore) Delete(ctx context.Context, username string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AttemptStore is a Postgres-backed store.AttemptStore.
type AttemptStore struct {
	pool *pgxpool.Pool
}

// NewAttemptStore creates an attempt store over the given database.
func NewAttemptStore(db *database.DB) *AttemptStore {
	return &AttemptStore{pool: db.Pool}
}

func (s *AttemptStore) Get(ctx context.Context, username string) (*models.LoginAttempt, error) {
	query := `SELECT username, count, last_attempt FROM login_attempts WHERE username = $1`

	var attempt models.LoginAttempt
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&attempt.Username, &attempt.Count, &attempt.LastAttempt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &attempt, nil
}

func (s *AttemptStore) Put(ctx context.Context, username string, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (username, count, last_attempt)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET count = EXCLUDED.count, last_attempt = EXCLUDED.last_attempt
	`

	_, err := s.pool.Exec(ctx, query, username, attempt.Count, attempt.LastAttempt)
	if err != nil {
		return fmt.Errorf("failed to save attempt for %q: %w", username, err)
	}
	return nil
}

func (s *AttemptStore) Clear(ctx context.Context, username string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM login_attempts WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to clear attempts for %q: %w", username, err)
	}
	return nil
}

func (s *AttemptStore) All(ctx context.Context) (map[string]*models.LoginAttempt, error) {
	rows, err := s.pool.Query(ctx, `SELECT username, count, last_attempt FROM login_attempts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make(map[string]*models.LoginAttempt)
	for rows.Next() {
		var attempt models.LoginAttempt
		if err := rows.Scan(&attempt.Username, &attempt.Count, &attempt.LastAttempt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts[attempt.Username] = &attempt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return attempts, nil
}

// AuditLog is a Postgres-backed store.AuditLog. ReadAll renders rows in
// the same "[<timestamp>] <message>" line format the file backend uses.
type AuditLog struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewAuditLog creates an audit log over the given database.
func NewAuditLog(db *database.DB) *AuditLog {
	return &AuditLog{pool: db.Pool, now: time.Now}
}

func (l *AuditLog) Append(ctx context.Context, message string) error {
	query := `INSERT INTO audit_log (id, logged_at, message) VALUES ($1, $2, $3)`

	if _, err := l.pool.Exec(ctx, query, uuid.New().String(), l.now(), message); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

func (l *AuditLog) ReadAll(ctx context.Context) (string, error) {
	rows, err := l.pool.Query(ctx, `SELECT logged_at, message FROM audit_log ORDER BY seq`)
	if err != nil {
		return "", fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var loggedAt time.Time
		var message string
		if err := rows.Scan(&loggedAt, &message); err != nil {
			return "", fmt.Errorf("failed to scan audit event: %w", err)
		}
		sb.WriteString(store.FormatAuditLine(loggedAt, message))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating audit log: %w", err)
	}
	return sb.String(), nil
}

func (l *AuditLog) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := l.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM audit_log)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check audit log: %w", err)
	}
	return exists, nil
}
