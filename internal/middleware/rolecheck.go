package middleware

import (
	"context"
	"net/http"

	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

// AccountSource отдаёт актуальную роль учётной записи из хранилища.
// Возвращает found=false, если учётная запись больше не существует.
type AccountSource interface {
	GetAccountRole(ctx context.Context, accountID int64) (role model.Role, found bool, err error)
}

// RequireRole возвращает middleware, пропускающее запрос только при наличии
// у учётной записи одной из перечисленных ролей. Роль перечитывается из
// хранилища при каждом запросе: токен несёт личность, а не полномочия,
// поэтому смена роли действует до естественного истечения сессии.
func RequireRole(source AccountSource, roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			role, found, err := source.GetAccountRole(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !found {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			if _, ok := allowed[role]; !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
