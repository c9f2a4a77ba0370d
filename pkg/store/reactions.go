package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/utils"
	"github.com/alferrante/tinykind/pkg/validation"
)

// UpsertReactionInput identifies the target message and reacting recipient.
type UpsertReactionInput struct {
	Slug                 string
	Emoji                string
	RecipientFingerprint string
}

// UpsertReactionResult reports the stored reaction, its owning message, and
// whether the emoji value actually changed. Downstream notification logic
// keys off Changed: a repeated identical reaction notifies nobody.
type UpsertReactionResult struct {
	Reaction models.Reaction
	Message  models.Message
	Changed  bool
}

// UpsertReaction stores or updates the one reaction row for the
// (message, fingerprint) pair. The target must be a live, sent message.
func UpsertReaction(input UpsertReactionInput) (*UpsertReactionResult, error) {
	if !models.IsAllowedReaction(input.Emoji) {
		return nil, validation.Errorf("unsupported emoji")
	}
	if input.RecipientFingerprint == "" {
		return nil, validation.Errorf("recipient fingerprint is required")
	}

	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}

	var msg *models.Message
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.ShortLinkSlug == input.Slug && m.Status == models.StatusSent && m.Live() {
			msg = m
			break
		}
	}
	if msg == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	for i := range doc.Reactions {
		r := &doc.Reactions[i]
		if r.MessageID == msg.ID && r.RecipientFingerprint == input.RecipientFingerprint {
			changed := r.Emoji != input.Emoji
			r.Emoji = input.Emoji
			r.CreatedAt = now
			if err := persistLocked(doc); err != nil {
				return nil, err
			}
			logger.Log.Info("reaction_updated",
				zap.String("message", msg.ID), zap.String("emoji", input.Emoji), zap.Bool("changed", changed))
			return &UpsertReactionResult{Reaction: *r, Message: *msg, Changed: changed}, nil
		}
	}

	reaction := models.Reaction{
		ID:                   utils.GenID(),
		MessageID:            msg.ID,
		Emoji:                input.Emoji,
		CreatedAt:            now,
		RecipientFingerprint: input.RecipientFingerprint,
	}
	doc.Reactions = append(doc.Reactions, reaction)
	if err := persistLocked(doc); err != nil {
		return nil, err
	}
	logger.Log.Info("reaction_created", zap.String("message", msg.ID), zap.String("emoji", input.Emoji))
	return &UpsertReactionResult{Reaction: reaction, Message: *msg, Changed: true}, nil
}
