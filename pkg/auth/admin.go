package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/utils"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "X-Tinykind-Admin-Token"

// RequireAdmin gates privileged routes on the configured token. Both an
// unconfigured token and a mismatch produce the same not-found-shaped
// response, so the privileged surface does not reveal its existence.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	expected := strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" || r.Header.Get(AdminTokenHeader) != expected {
				logger.Log.Warn("admin_rejected", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
				utils.JSONError(w, http.StatusNotFound, "not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
