// Package middleware содержит HTTP middleware сервиса SAWA.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/HasanDroid18/SAWA-Backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

const (
	// AuthCookieName — имя cookie с сессионным токеном.
	AuthCookieName = "Authorization"
	// ClientHeader объявляет небраузерного клиента: токен берётся
	// из заголовка Authorization, а не из cookie.
	ClientHeader     = "Client"
	clientNotBrowser = "not-browser"
	bearerPrefix     = "Bearer "
)

// Identifier выполняет проверку аутентификации по подписанному сессионному токену.
type Identifier struct {
	issuer *auth.TokenIssuer
}

// NewIdentifier создаёт middleware аутентификации с указанным эмитентом токенов.
func NewIdentifier(issuer *auth.TokenIssuer) *Identifier {
	return &Identifier{issuer: issuer}
}

// Middleware извлекает токен из cookie либо заголовка Authorization,
// проверяет его и кладёт утверждения сессии в контекст запроса.
func (i *Identifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := i.extractToken(r)
		if raw == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		claims, err := i.issuer.Verify(raw)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (i *Identifier) extractToken(r *http.Request) string {
	var value string

	if strings.EqualFold(r.Header.Get(ClientHeader), clientNotBrowser) {
		value = r.Header.Get("Authorization")
	} else {
		if cookie, err := r.Cookie(AuthCookieName); err == nil {
			value = cookie.Value
		}
		if value == "" {
			value = r.Header.Get("Authorization")
		}
	}

	value = strings.TrimSpace(value)
	if after, ok := strings.CutPrefix(value, bearerPrefix); ok {
		return after
	}
	return value
}

// SetAuthCookie устанавливает cookie авторизации с сессионным токеном.
func SetAuthCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    bearerPrefix + token,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// ClearAuthCookie сбрасывает cookie авторизации при выходе из системы.
// Сервер не ведёт списка отозванных токенов: выход — это забывание токена клиентом.
func ClearAuthCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// GetClaimsFromContext извлекает утверждения сессии из контекста запроса.
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// WithClaims возвращает контекст с утверждениями сессии; используется в тестах
// обработчиков, минующих middleware.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
