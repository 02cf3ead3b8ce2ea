package middleware

import (
	"net/http"

	"xblog/internal/reqctx"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID берёт X-Request-ID из запроса или генерирует новый.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, rid)
		ctx := reqctx.WithRequestID(r.Context(), rid)
		if username, _, ok := r.BasicAuth(); ok {
			ctx = reqctx.WithUsername(ctx, username)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
