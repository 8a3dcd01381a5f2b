package auth

import (
	"net/http"
	"strings"

	"github.com/IDINaXI/Nutrio/internal/config"
)

// Middleware checks request authorization.
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

// RequireAuth protects endpoints with a bearer token.
// With AUTH_REQUIRED=false the token is checked only when present.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !m.config.AuthRequired && strings.TrimSpace(header) == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.authenticateHeader(header)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (int64, error) {
	if authHeader == "" {
		return 0, ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, ErrInvalidToken
	}

	return m.service.VerifyJWT(strings.TrimSpace(parts[1]))
}

func isPublicPath(path string) bool {
	switch path {
	case "/healthz", "/metrics", "/v1/auth/register", "/v1/auth/login":
		return true
	}
	// всё вне API: статика SPA
	return path != "/v1" && !strings.HasPrefix(path, "/v1/")
}
