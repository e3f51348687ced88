package models

import "time"

// DefaultLockoutThreshold is the number of consecutive failed logins
// after which a username is locked until an admin intervenes.
const DefaultLockoutThreshold = 3

// LoginAttempt tracks consecutive failed login attempts for a username.
// A missing record is equivalent to a count of zero. The JSON field names
// match the on-disk failed_attempts.json layout.
type LoginAttempt struct {
	Username    string    `json:"-"`
	Count       int       `json:"count"`
	LastAttempt time.Time `json:"last_attempt"`
}

// Locked reports whether the attempt count has reached the threshold.
func (a *LoginAttempt) Locked(threshold int) bool {
	return a != nil && a.Count >= threshold
}
