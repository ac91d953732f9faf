package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/guildqueue/pkg/ctxutil"
)

type tokenValidator interface {
	Validate(token string) (subject string, err error)
}

// AdminAuth rejects requests without a valid admin bearer token and stores
// the token subject in the request context.
func AdminAuth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			subject, err := validator.Validate(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithAdminSubject(r.Context(), subject)))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
