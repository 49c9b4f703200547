package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"

	// UserIDHeader заголовок с идентификатором пользователя, проставляется шлюзом
	UserIDHeader = "X-User-ID"

	msgMissingUserID = "отсутствует заголовок X-User-ID"
	maxUserIDLength  = 128
)

// Auth требует X-User-ID и кладет идентификатор пользователя в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" || len(userID) > maxUserIDLength {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID кладет идентификатор пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// GetUserID возвращает идентификатор пользователя, положенный Auth
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKeyUserID).(string)
	return userID, ok && userID != ""
}
