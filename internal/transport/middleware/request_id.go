package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates the caller's X-Request-Id or generates a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}
