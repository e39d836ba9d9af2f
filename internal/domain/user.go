package domain

// Role enumerates console user roles as issued by the backend.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
	RoleUser   Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RoleUser:
		return true
	}
	return false
}

// User is the account view the backend returns for the caller or a driver.
type User struct {
	ID                     string `json:"id"`
	Email                  string `json:"email"`
	FullName               string `json:"full_name"`
	Role                   Role   `json:"role"`
	EmailVerified          bool   `json:"email_verified"`
	RequiresPasswordChange bool   `json:"requires_password_change"`
}
