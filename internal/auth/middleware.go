package auth

import (
	"net/http"
	"strings"

	"github.com/caravel-dist/caravel-dist/internal/platform/httpx"
	"github.com/caravel-dist/caravel-dist/internal/shared"
)

// Middleware resolves the Bearer token on each request and stores the actor
// in the request context. Requests without a valid token are rejected.
func Middleware(tokens *TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			userID, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			ctx := shared.ContextWithActor(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
