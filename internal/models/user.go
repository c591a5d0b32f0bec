package models

import "gopkg.in/guregu/null.v4"

// User roles.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// User is an account record. Password holds the bcrypt hash when persisted;
// services blank it before returning a user over the API.
type User struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Phone    null.String `json:"phone,omitempty"`
	Password string      `json:"password,omitempty"`
	Role     string      `json:"role"`
}

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed token and the authenticated user.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
