package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost trades hash latency against brute-force resistance.
	BcryptCost = bcrypt.DefaultCost

	MinLength = 8

	// SpecialChars is the fixed set accepted by the complexity rule.
	SpecialChars = `!@#$%^&*(),.?":{}|<>`
)

// ValidationError holds the individual complexity rules a candidate
// password failed. The Error string stays generic so requirement details
// are never echoed back verbatim to login surfaces.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return "invalid password"
}

// Validate enforces the password complexity policy: at least MinLength
// characters with one uppercase letter, one lowercase letter, one digit
// and one character from SpecialChars.
func Validate(password string) error {
	errs := make([]string, 0)

	if len(password) < MinLength {
		errs = append(errs, fmt.Sprintf("must be at least %d characters", MinLength))
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSpecial := false

	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(SpecialChars, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		errs = append(errs, "must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "must contain at least one digit")
	}
	if !hasSpecial {
		errs = append(errs, "must contain at least one special character")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// IsValid reports whether the password satisfies the complexity policy.
func IsValid(password string) bool {
	return Validate(password) == nil
}

// Hash derives a salted bcrypt hash. Each call salts independently, so
// hashing the same password twice yields different strings.
func Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored bcrypt hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
