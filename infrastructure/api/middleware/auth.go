package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
)

// TokenVerifier resolves a bearer token to the user it belongs to.
// *service.Auth satisfies this.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (user.User, error)
}

type userKeyType int

const userKey userKeyType = 0

// RequireUser returns middleware that authenticates requests via an
// Authorization: Bearer header and stores the resolved user in the
// request context. Missing or invalid tokens get a 401 JSON:API error.
func RequireUser(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, r, NewAuthenticationError("missing bearer token"), logger)
				return
			}

			u, err := verifier.Verify(r.Context(), token)
			if err != nil {
				WriteError(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user stored by RequireUser.
func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userKey).(user.User)
	return u, ok
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
