package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HasanDroid18/SAWA-Backend/internal/auth"
	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

func newTestIdentifier(t *testing.T) (*Identifier, *auth.TokenIssuer) {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}
	return NewIdentifier(issuer), issuer
}

func TestIdentifier_WithValidCookie(t *testing.T) {
	m, issuer := newTestIdentifier(t)

	token, err := issuer.Issue(42, "user@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			t.Fatalf("claims not in context")
		}
		if claims.UserID != 42 {
			t.Fatalf("claims user id = %d, want 42", claims.UserID)
		}
	})

	w := httptest.NewRecorder()
	SetAuthCookie(w, token)
	resCookies := w.Result().Cookies()
	if len(resCookies) == 0 {
		t.Fatalf("no cookies set by SetAuthCookie")
	}

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(resCookies[0])

	handler := m.Middleware(next)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestIdentifier_NotBrowserHeader(t *testing.T) {
	m, issuer := newTestIdentifier(t)

	token, err := issuer.Issue(7, "api@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set(ClientHeader, "not-browser")
	r.Header.Set("Authorization", "Bearer "+token)

	handler := m.Middleware(next)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called for header transport")
	}
}

func TestIdentifier_WithoutToken(t *testing.T) {
	m, _ := newTestIdentifier(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)

	handler := m.Middleware(next)
	handler.ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestIdentifier_InvalidToken(t *testing.T) {
	m, _ := newTestIdentifier(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set(ClientHeader, "not-browser")
	r.Header.Set("Authorization", "Bearer not-a-token")

	handler := m.Middleware(next)
	handler.ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestClearAuthCookie(t *testing.T) {
	w := httptest.NewRecorder()
	ClearAuthCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookie set")
	}
	if cookies[0].Name != AuthCookieName {
		t.Fatalf("cookie name = %q, want %q", cookies[0].Name, AuthCookieName)
	}
	if cookies[0].MaxAge >= 0 {
		t.Fatalf("cookie must be expired, MaxAge = %d", cookies[0].MaxAge)
	}
}
