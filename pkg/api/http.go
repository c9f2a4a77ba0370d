package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alferrante/tinykind/internal/backup"
	"github.com/alferrante/tinykind/pkg/api/handlers"
	"github.com/alferrante/tinykind/pkg/auth"
	"github.com/alferrante/tinykind/pkg/notify"
)

// Deps carries the collaborators the handlers need.
type Deps struct {
	Notifier   notify.Notifier
	Backups    *backup.Manager
	BaseURL    string
	AdminToken string
}

// Handler builds the versioned API router. Public routes sit directly under
// /v1; the privileged surface under /v1/admin is gated by the admin token.
func Handler(d Deps) http.Handler {
	handlers.Configure(handlers.Deps{
		Notifier: d.Notifier,
		Backups:  d.Backups,
		BaseURL:  d.BaseURL,
	})

	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterPublic(v1)

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireAdmin(d.AdminToken))
	handlers.RegisterAdmin(admin)

	return r
}
