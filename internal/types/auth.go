//nolint:revive // types is a standard Go package name pattern
package types

// Role is the coarse permission label attached to a signed-in user.
type Role string

// Roles handed out by the login stub.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// User is the signed-in identity. There is no stored profile behind it.
type User struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginResponse represents the login response with user data and session token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
