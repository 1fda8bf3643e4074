package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
)

type fakeVerifier struct {
	user user.User
	err  error
}

func (f fakeVerifier) Verify(_ context.Context, _ string) (user.User, error) {
	return f.user, f.err
}

func echoUserHandler(t *testing.T, wantEmail string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok {
			t.Error("UserFrom should find the authenticated user")
		}
		if u.Email() != wantEmail {
			t.Errorf("user email = %q, want %q", u.Email(), wantEmail)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser_ValidToken(t *testing.T) {
	verifier := fakeVerifier{user: user.NewUser("alice@example.com", "hash", "Alice")}
	handler := RequireUser(verifier, nil)(echoUserHandler(t, "alice@example.com"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireUser_MissingHeader(t *testing.T) {
	verifier := fakeVerifier{user: user.NewUser("alice@example.com", "hash", "Alice")}
	handler := RequireUser(verifier, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireUser_MalformedHeader(t *testing.T) {
	verifier := fakeVerifier{user: user.NewUser("alice@example.com", "hash", "Alice")}
	handler := RequireUser(verifier, nil)(okHandler())

	for _, header := range []string{"sometoken", "Basic sometoken", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRequireUser_InvalidToken(t *testing.T) {
	verifier := fakeVerifier{err: service.ErrInvalidToken}
	handler := RequireUser(verifier, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireUser_CaseInsensitiveScheme(t *testing.T) {
	verifier := fakeVerifier{user: user.NewUser("alice@example.com", "hash", "Alice")}
	handler := RequireUser(verifier, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer sometoken")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("lowercase scheme: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUserFrom_EmptyContext(t *testing.T) {
	_, ok := UserFrom(context.Background())
	if ok {
		t.Error("UserFrom on an empty context should report not found")
	}
}

func TestWithUser_RoundTrip(t *testing.T) {
	u := user.NewUser("alice@example.com", "hash", "Alice")
	ctx := WithUser(context.Background(), u)

	got, ok := UserFrom(ctx)
	if !ok {
		t.Fatal("UserFrom should find the stored user")
	}
	if got.Email() != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", got.Email())
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
