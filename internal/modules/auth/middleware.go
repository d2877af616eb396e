package auth

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
)

// Middleware attaches a session for requests carrying a valid bearer token.
// Requests without an Authorization header pass through anonymously; a
// malformed or expired token is rejected outright.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				httpx.Error(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			sess, err := svc.Verify(parts[1])
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}
