package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/notify"
	"github.com/alferrante/tinykind/pkg/store"
	"github.com/alferrante/tinykind/pkg/telemetry"
	"github.com/alferrante/tinykind/pkg/utils"
)

// fingerprintCookie carries the per-recipient stable seed. Minted once and
// kept for a year; the derived fingerprint is what gets stored.
const fingerprintCookie = "tk_fp"

type reactionRequest struct {
	Slug  string `json:"slug"`
	Emoji string `json:"emoji"`
}

type notificationResult struct {
	Attempted bool   `json:"attempted"`
	Sent      bool   `json:"sent"`
	Reason    string `json:"reason,omitempty"`
}

type reactionResponse struct {
	Reaction     models.Reaction    `json:"reaction"`
	Changed      bool               `json:"changed"`
	Notification notificationResult `json:"notification"`
}

func upsertReaction(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	slug := strings.TrimSpace(req.Slug)
	emoji := strings.TrimSpace(req.Emoji)
	if slug == "" || emoji == "" {
		utils.JSONError(w, http.StatusBadRequest, "slug and emoji are required")
		return
	}

	seed, minted := fingerprintSeed(r)
	res, err := store.UpsertReaction(store.UpsertReactionInput{
		Slug:                 slug,
		Emoji:                emoji,
		RecipientFingerprint: utils.Fingerprint(seed),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	telemetry.ReactionsUpserted.WithLabelValues(strconv.FormatBool(res.Changed)).Inc()

	// The reaction is committed. Notification failure from here on is
	// reported in the response, never rolled back into the write.
	outcome := notificationResult{}
	if res.Changed && res.Message.SenderNotifyEmail != "" && deps.Notifier != nil {
		outcome.Attempted = true
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		o := notify.Dispatch(ctx, deps.Notifier, notify.ReactionEvent{
			ToEmail:       res.Message.SenderNotifyEmail,
			SenderName:    res.Message.SenderName,
			RecipientName: res.Message.RecipientName,
			Emoji:         res.Reaction.Emoji,
			MessageURL:    baseURL(r) + "/t/" + res.Message.ShortLinkSlug,
		})
		cancel()
		outcome.Sent = o.Sent
		outcome.Reason = o.Reason
	}

	if minted {
		setFingerprintCookie(w, r, seed)
	}
	_ = utils.JSONWrite(w, http.StatusCreated, reactionResponse{
		Reaction:     res.Reaction,
		Changed:      res.Changed,
		Notification: outcome,
	})
}

// fingerprintSeed returns the stable seed from the cookie, minting a fresh
// one when absent. The second return reports whether a cookie must be set.
func fingerprintSeed(r *http.Request) (string, bool) {
	if c, err := r.Cookie(fingerprintCookie); err == nil && c.Value != "" {
		return c.Value, false
	}
	return uuid.NewString(), true
}

func setFingerprintCookie(w http.ResponseWriter, r *http.Request, seed string) {
	http.SetCookie(w, &http.Cookie{
		Name:     fingerprintCookie,
		Value:    seed,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
