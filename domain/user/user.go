// Package user provides the user aggregate for account ownership.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns forms. Emails are stored normalized
// to lowercase so uniqueness checks are case-insensitive.
type User struct {
	id           int64
	uuid         uuid.UUID
	email        string
	passwordHash string
	displayName  string
	createdAt    time.Time
}

// NewUser creates a new User with a fresh public identifier.
// The password hash must already be computed; this package never sees
// plaintext passwords.
func NewUser(email, passwordHash, displayName string) User {
	return User{
		uuid:         uuid.New(),
		email:        NormalizeEmail(email),
		passwordHash: passwordHash,
		displayName:  strings.TrimSpace(displayName),
		createdAt:    time.Now().UTC(),
	}
}

// ReconstructUser reconstructs a User from persistence.
func ReconstructUser(id int64, userUUID uuid.UUID, email, passwordHash, displayName string, createdAt time.Time) User {
	return User{
		id:           id,
		uuid:         userUUID,
		email:        email,
		passwordHash: passwordHash,
		displayName:  displayName,
		createdAt:    createdAt,
	}
}

// ID returns the persistence key (0 until saved).
func (u User) ID() int64 { return u.id }

// UUID returns the public identifier. Forms reference their owner by it and
// it is the subject claim of session tokens.
func (u User) UUID() uuid.UUID { return u.uuid }

// Email returns the normalized email address.
func (u User) Email() string { return u.email }

// PasswordHash returns the bcrypt hash of the user's password.
func (u User) PasswordHash() string { return u.passwordHash }

// DisplayName returns the display name.
func (u User) DisplayName() string { return u.displayName }

// CreatedAt returns the creation timestamp.
func (u User) CreatedAt() time.Time { return u.createdAt }

// WithID returns a copy of the user with the given persistence key.
func (u User) WithID(id int64) User {
	u.id = id
	return u
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
