package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/alferrante/tinykind/internal/backup"
	"github.com/alferrante/tinykind/pkg/notify"
	"github.com/alferrante/tinykind/pkg/store"
	"github.com/alferrante/tinykind/pkg/utils"
	"github.com/alferrante/tinykind/pkg/validation"
)

// Deps are installed once at startup via Configure.
type Deps struct {
	Notifier notify.Notifier
	Backups  *backup.Manager
	BaseURL  string
}

var deps Deps

// Configure installs the handler collaborators.
func Configure(d Deps) { deps = d }

// RegisterPublic registers the unauthenticated endpoints.
func RegisterPublic(r *mux.Router) {
	r.HandleFunc("/messages", createMessage).Methods(http.MethodPost)
	r.HandleFunc("/t/{slug}", getMessageBySlug).Methods(http.MethodGet)
	r.HandleFunc("/reactions", upsertReaction).Methods(http.MethodPost)
}

// RegisterAdmin registers the privileged endpoints. The caller applies the
// admin-token middleware.
func RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/messages", listMessages).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}", getMessage).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}", deleteMessage).Methods(http.MethodDelete)
	r.HandleFunc("/backup", manualBackup).Methods(http.MethodPost)
	r.HandleFunc("/storage", storageDiagnostics).Methods(http.MethodGet)
}

// baseURL prefers the configured public base and falls back to the request
// host so share links work in local setups without configuration.
func baseURL(r *http.Request) string {
	if deps.BaseURL != "" {
		return strings.TrimRight(deps.BaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// writeStoreError maps store failures onto the response taxonomy: rejected
// input is a 400 with the reason, unknown keys are 404, anything else is a
// server-side failure.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		utils.JSONError(w, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "message not found")
	default:
		utils.JSONError(w, http.StatusInternalServerError, "storage failure")
	}
}
