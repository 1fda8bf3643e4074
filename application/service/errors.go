package service

import "errors"

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("centralign: client is closed")

// Auth sentinels. Handlers map these onto HTTP statuses.
var (
	// ErrInvalidCredentials indicates a login with an unknown email or a
	// wrong password. Both cases share one error so responses never reveal
	// which part failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken indicates a registration against an existing email.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidToken indicates a session token that is missing, malformed,
	// expired, or signed with the wrong key.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrInvalidEmail indicates a registration email that does not look like
	// an address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword indicates a registration password below the minimum
	// length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)
