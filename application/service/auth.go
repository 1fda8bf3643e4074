package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen is the minimum accepted password length, in bytes.
const minPasswordLen = 8

// dummyHash is a valid bcrypt hash compared against when login hits an
// unknown email, so unknown emails cost the same as wrong passwords.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Session is an authenticated user paired with a signed token.
type Session struct {
	user      user.User
	token     string
	expiresAt time.Time
}

// User returns the authenticated user.
func (s Session) User() user.User { return s.user }

// Token returns the signed session token.
func (s Session) Token() string { return s.token }

// ExpiresAt returns when the token stops being accepted.
func (s Session) ExpiresAt() time.Time { return s.expiresAt }

// Auth provides registration, login, and session token verification.
// Tokens are HMAC-signed JWTs whose subject is the user's public identifier.
type Auth struct {
	users    user.UserStore
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(users user.UserStore, cfg config.AuthConfig, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		users:    users,
		secret:   []byte(cfg.JWTSecret()),
		tokenTTL: cfg.TokenTTL(),
		logger:   logger,
	}
}

// Register creates an account and returns a fresh session for it.
func (s *Auth) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	email = user.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return Session{}, ErrWeakPassword
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return Session{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	saved, err := s.users.Save(ctx, user.NewUser(email, string(hash), displayName))
	if err != nil {
		return Session{}, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_uuid", saved.UUID().String()),
	)
	return s.session(saved)
}

// Login verifies credentials and returns a fresh session.
func (s *Auth) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Burn a hash comparison anyway to keep timing flat.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash()), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	s.logger.Debug("user logged in",
		slog.String("user_uuid", u.UUID().String()),
	)
	return s.session(u)
}

// Verify parses and validates a session token, returning the user it names.
// Every validation failure maps onto ErrInvalidToken.
func (s *Auth) Verify(ctx context.Context, token string) (user.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return user.User{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	u, err := s.users.GetByUUID(ctx, subject)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return user.User{}, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// session signs a new token for the user.
func (s *Auth) session(u user.User) (Session, error) {
	if len(s.secret) == 0 {
		return Session{}, fmt.Errorf("session signing secret is not configured")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   u.UUID().String(),
		Issuer:    "centralign",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{user: u, token: token, expiresAt: expiresAt}, nil
}
