// Package store defines the persistence interfaces the authentication
// core is handed at construction. Backends are interchangeable: JSON
// files, process memory, or Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"chartline/internal/models"
)

// AuditTimeLayout is the timestamp format used for audit log lines.
const AuditTimeLayout = "2006-01-02 15:04:05"

// CredentialStore owns user records keyed by username (case-sensitive).
type CredentialStore interface {
	// Get returns the record for username, or models.ErrNotFound.
	Get(ctx context.Context, username string) (*models.User, error)
	// Put inserts or replaces the record for username.
	Put(ctx context.Context, username string, user *models.User) error
	// Exists reports whether a record exists for username.
	Exists(ctx context.Context, username string) (bool, error)
	// All returns every record keyed by username.
	All(ctx context.Context) (map[string]*models.User, error)
	// Delete removes the record for username, or returns models.ErrNotFound.
	Delete(ctx context.Context, username string) error
}

// AttemptStore owns failed-login counters keyed by username. A missing
// record is equivalent to a count of zero.
type AttemptStore interface {
	// Get returns the counter for username, or models.ErrNotFound.
	Get(ctx context.Context, username string) (*models.LoginAttempt, error)
	// Put inserts or replaces the counter for username.
	Put(ctx context.Context, username string, attempt *models.LoginAttempt) error
	// Clear removes the counter for username. Clearing an absent record
	// is not an error.
	Clear(ctx context.Context, username string) error
	// All returns every counter keyed by username.
	All(ctx context.Context) (map[string]*models.LoginAttempt, error)
}

// AuditLog records security events, one timestamped line per event,
// append-only.
type AuditLog interface {
	// Append records a message, timestamping it at call time.
	Append(ctx context.Context, message string) error
	// ReadAll returns the full log content in append order.
	ReadAll(ctx context.Context) (string, error)
	// Exists reports whether any events have been recorded.
	Exists(ctx context.Context) (bool, error)
}

// FormatAuditLine renders one audit log line: "[<timestamp>] <message>".
func FormatAuditLine(at time.Time, message string) string {
	return fmt.Sprintf("[%s] %s\n", at.Format(AuditTimeLayout), message)
}
