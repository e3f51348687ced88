package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"chartline/internal/models"
	"chartline/internal/store"
	pkglogger "chartline/pkg/logger"
	"chartline/pkg/password"
)

// User-visible messages. Failed lookups and failed password checks share
// one generic message so the API never reveals whether a username exists.
const (
	MsgAccountLocked      = "Account locked due to multiple failed attempts"
	MsgInvalidCredentials = "Invalid username or password"
)

// emailPattern is a basic local@domain.tld shape check, not full RFC 5322.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	Success         bool            `json:"success"`
	User            *models.Profile `json:"user,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	RequiresCaptcha bool            `json:"requires_captcha"`
}

// AuthService orchestrates credential verification, lockout tracking and
// the audit trail. It holds no state of its own; storage collaborators
// are injected at construction and shared with the rest of the app.
type AuthService struct {
	users     store.CredentialStore
	attempts  store.AttemptStore
	audit     store.AuditLog
	logger    *slog.Logger
	threshold int
	now       func() time.Time
}

// NewAuthService creates an AuthService. A threshold < 1 falls back to
// the default of three failed attempts.
func NewAuthService(users store.CredentialStore, attempts store.AttemptStore, audit store.AuditLog, logger *slog.Logger, threshold int) *AuthService {
	if threshold < 1 {
		threshold = models.DefaultLockoutThreshold
	}
	return &AuthService{
		users:     users,
		attempts:  attempts,
		audit:     audit,
		logger:    logger,
		threshold: threshold,
		now:       time.Now,
	}
}

// Authenticate verifies a username/password pair.
//
// A locked username short-circuits before any record lookup or hash
// verification: once the counter trips, supplying the correct password
// does not clear the lock. Recovery requires UnlockUser or an admin
// password reset. Storage failures are returned as errors; everything
// else is expressed in the AuthResult.
func (s *AuthService) Authenticate(ctx context.Context, username, pw string) (*AuthResult, error) {
	locked, err := s.isLocked(ctx, username)
	if err != nil {
		return nil, err
	}
	if locked {
		s.logger.Info("login blocked: account locked", slog.String("username", username))
		return &AuthResult{
			Success:         false,
			ErrorMessage:    MsgAccountLocked,
			RequiresCaptcha: true,
		}, nil
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("credential lookup failed: %w", err)
		}
		if err := s.recordFailedAttempt(ctx, username); err != nil {
			return nil, err
		}
		if err := s.audit.Append(ctx, fmt.Sprintf("Failed login attempt for non-existent username: %s", username)); err != nil {
			return nil, err
		}
		s.logger.Info("login failed: invalid credentials")
		return &AuthResult{Success: false, ErrorMessage: MsgInvalidCredentials}, nil
	}

	if password.Verify(pw, user.PasswordHash) {
		if err := s.attempts.Clear(ctx, username); err != nil {
			return nil, err
		}
		if err := s.audit.Append(ctx, fmt.Sprintf("Successful login: %s", username)); err != nil {
			return nil, err
		}
		s.logger.Info("user logged in", slog.String("username", username))
		profile := user.Profile()
		return &AuthResult{Success: true, User: &profile}, nil
	}

	if err := s.recordFailedAttempt(ctx, username); err != nil {
		return nil, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("Failed login attempt for username: %s", username)); err != nil {
		return nil, err
	}
	s.logger.Info("login failed: invalid credentials")

	nowLocked, err := s.isLocked(ctx, username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Success:         false,
		ErrorMessage:    MsgInvalidCredentials,
		RequiresCaptcha: nowLocked,
	}, nil
}

// CreateUser registers a new user. It returns false, with no side
// effects, when the username is taken, the password fails the policy,
// the email fails the shape check, or the role is outside the closed
// admin/viewer set.
func (s *AuthService) CreateUser(ctx context.Context, username, email, pw string, role models.Role) (bool, error) {
	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("user creation failed: username taken", slog.String("username", username))
		return false, nil
	}

	if !password.IsValid(pw) {
		s.logger.Info("user creation failed: password policy", slog.String("username", username))
		return false, nil
	}

	if !emailPattern.MatchString(email) {
		s.logger.Info("user creation failed: malformed email", slog.String("username", username))
		return false, nil
	}

	if !role.Valid() {
		s.logger.Info("user creation failed: unknown role", slog.String("username", username), slog.String("role", string(role)))
		return false, nil
	}

	hash, err := password.Hash(pw)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Put(ctx, username, user); err != nil {
		return false, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("User created: %s (%s)", username, role)); err != nil {
		return false, err
	}
	s.logger.Info("user created",
		slog.String("username", username),
		slog.String("role", string(role)),
		slog.String("email", pkglogger.MaskEmail(email)))
	return true, nil
}

// ResetPassword is the self-service reset. It deliberately does not
// clear the attempt counter; a locked account stays locked.
func (s *AuthService) ResetPassword(ctx context.Context, username, newPassword string) (bool, error) {
	if !password.IsValid(newPassword) {
		return false, nil
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Put(ctx, username, user); err != nil {
		return false, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("Password reset by user: %s", username)); err != nil {
		return false, err
	}
	s.logger.Info("password reset", slog.String("username", username))
	return true, nil
}

// AdminResetPassword resets a user's password on behalf of an admin and
// clears the target's attempt counter, so a reset also recovers a locked
// account.
func (s *AuthService) AdminResetPassword(ctx context.Context, targetUsername, newPassword, adminUsername string) (bool, error) {
	if !password.IsValid(newPassword) {
		return false, nil
	}

	user, err := s.users.Get(ctx, targetUsername)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Put(ctx, targetUsername, user); err != nil {
		return false, err
	}
	if err := s.attempts.Clear(ctx, targetUsername); err != nil {
		return false, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("Admin %s reset password for user: %s", adminUsername, targetUsername)); err != nil {
		return false, err
	}
	s.logger.Info("admin password reset",
		slog.String("admin", adminUsername),
		slog.String("username", targetUsername))
	return true, nil
}

// UpdateUser applies a partial update: empty email or role arguments
// leave the stored value untouched. The audit entry reflects the values
// passed, even when unchanged.
func (s *AuthService) UpdateUser(ctx context.Context, username, email string, role models.Role) (bool, error) {
	if role != "" && !role.Valid() {
		s.logger.Info("user update failed: unknown role", slog.String("username", username), slog.String("role", string(role)))
		return false, nil
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if email != "" {
		user.Email = email
	}
	if role != "" {
		user.Role = role
	}

	if err := s.users.Put(ctx, username, user); err != nil {
		return false, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("Updated user info: %s, role=%s, email=%s", username, role, email)); err != nil {
		return false, err
	}
	s.logger.Info("user updated",
		slog.String("username", username),
		slog.String("email", pkglogger.MaskEmail(user.Email)))
	return true, nil
}

// UnlockUser clears the attempt counter for a username. It returns false
// when no counter exists, so unlocking an already-unlocked account is a
// reported no-op.
func (s *AuthService) UnlockUser(ctx context.Context, username, adminUsername string) (bool, error) {
	_, err := s.attempts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.attempts.Clear(ctx, username); err != nil {
		return false, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("Admin %s unlocked user: %s", adminUsername, username)); err != nil {
		return false, err
	}
	s.logger.Info("user unlocked",
		slog.String("admin", adminUsername),
		slog.String("username", username))
	return true, nil
}

// DeleteUser removes a user record. The login path never calls this.
func (s *AuthService) DeleteUser(ctx context.Context, username, adminUsername string) (bool, error) {
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.audit.Append(ctx, fmt.Sprintf("Admin %s deleted user: %s", adminUsername, username)); err != nil {
		return false, err
	}
	s.logger.Info("user deleted",
		slog.String("admin", adminUsername),
		slog.String("username", username))
	return true, nil
}

// Logout records the logout in the audit trail. There are no session
// tokens to invalidate; the UI layer owns its own ephemeral state.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	if err := s.audit.Append(ctx, fmt.Sprintf("User logged out: %s", username)); err != nil {
		return err
	}
	s.logger.Info("user logged out", slog.String("username", username))
	return nil
}

// AllUsers returns every stored record, keyed by username, for the admin
// listing.
func (s *AuthService) AllUsers(ctx context.Context) (map[string]*models.User, error) {
	return s.users.All(ctx)
}

// LockedUsers returns every username whose attempt counter has reached
// the lockout threshold.
func (s *AuthService) LockedUsers(ctx context.Context) ([]string, error) {
	attempts, err := s.attempts.All(ctx)
	if err != nil {
		return nil, err
	}

	locked := make([]string, 0)
	for username, attempt := range attempts {
		if attempt.Locked(s.threshold) {
			locked = append(locked, username)
		}
	}
	return locked, nil
}

// NeedsCaptcha reports whether the username is locked and the caller
// should present a CAPTCHA challenge.
func (s *AuthService) NeedsCaptcha(ctx context.Context, username string) (bool, error) {
	return s.isLocked(ctx, username)
}

func (s *AuthService) isLocked(ctx context.Context, username string) (bool, error) {
	attempt, err := s.attempts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("attempt lookup failed: %w", err)
	}
	return attempt.Locked(s.threshold), nil
}

func (s *AuthService) recordFailedAttempt(ctx context.Context, username string) error {
	count := 1
	attempt, err := s.attempts.Get(ctx, username)
	if err == nil {
		count = attempt.Count + 1
	} else if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("attempt lookup failed: %w", err)
	}

	return s.attempts.Put(ctx, username, &models.LoginAttempt{
		Username:    username,
		Count:       count,
		LastAttempt: s.now(),
	})
}
