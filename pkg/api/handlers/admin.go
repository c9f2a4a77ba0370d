package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alferrante/tinykind/pkg/store"
	"github.com/alferrante/tinykind/pkg/utils"
)

const defaultAdminListLimit = 200

func listMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultAdminListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := store.ListRecentMessagesWithLatestReaction(limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Messages []store.MessageWithLatestReaction `json:"messages"`
	}{Messages: items})
}

func getMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	msg, err := store.GetMessageByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	latest, err := store.GetLatestReactionForMessage(msg.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, store.MessageWithLatestReaction{Message: *msg, LatestReaction: latest})
}

func deleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := store.DeleteMessageByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !deleted {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]bool{"deleted": true})
}

func manualBackup(w http.ResponseWriter, r *http.Request) {
	path, live, err := deps.Backups.ManualSnapshot()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, struct {
		Path     string `json:"path"`
		Messages int    `json:"messages"`
	}{Path: path, Messages: live})
}

func storageDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := deps.Backups.Inspect()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, diag)
}
