package models

// Role is the set of roles a dashboard user can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the closed set assigned by
// account-management operations.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// User is a stored credential record, keyed by username. The JSON field
// names match the on-disk users.json layout, where the bcrypt hash is
// stored under "password".
type User struct {
	Username     string `json:"-"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"password"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsViewer reports whether the user holds the viewer role.
func (u *User) IsViewer() bool {
	return u.Role == RoleViewer
}

// Profile is the projection of a user returned to callers after a
// successful authentication. The password hash is deliberately excluded.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Profile builds the hash-free projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
