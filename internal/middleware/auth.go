package middleware

import (
	"net/http"
	"strings"

	"knowledgebase/internal/auth"
	"knowledgebase/internal/httputil"
)

// publicPrefixes are served without a bearer token. Blob routes carry their
// own signed token in the query string.
var publicPrefixes = []string{"/health", "/blobs/"}

// AuthMiddleware verifies the bearer token and stores its subject as the
// request's user ID
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID := claims.GetUserID()
			if userID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "token has no subject")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}

func isPublic(path string) bool {
	for _, prefix := range publicPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
