// Package dto defines the request and response shapes of the v1 API.
package dto

import "time"

// RegisterAttributes holds the fields for creating an account.
type RegisterAttributes struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegisterData represents registration data in JSON:API format.
type RegisterData struct {
	Type       string             `json:"type"`
	Attributes RegisterAttributes `json:"attributes"`
}

// RegisterRequest represents a JSON:API registration request.
type RegisterRequest struct {
	Data RegisterData `json:"data"`
}

// LoginAttributes holds the credentials for logging in.
type LoginAttributes struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData represents login data in JSON:API format.
type LoginData struct {
	Type       string          `json:"type"`
	Attributes LoginAttributes `json:"attributes"`
}

// LoginRequest represents a JSON:API login request.
type LoginRequest struct {
	Data LoginData `json:"data"`
}

// SessionAttributes describes an issued session token.
type SessionAttributes struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
}

// SessionData represents session data in JSON:API format.
// The ID is the public identifier of the authenticated user.
type SessionData struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes SessionAttributes `json:"attributes"`
}

// SessionResponse represents a session in JSON:API format.
type SessionResponse struct {
	Data SessionData `json:"data"`
}

// UserAttributes represents user attributes in JSON:API format.
type UserAttributes struct {
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// UserData represents user data in JSON:API format.
type UserData struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes UserAttributes `json:"attributes"`
}

// UserResponse represents a single user in JSON:API format.
type UserResponse struct {
	Data UserData `json:"data"`
}
