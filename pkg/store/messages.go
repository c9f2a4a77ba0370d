package store

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/utils"
	"github.com/alferrante/tinykind/pkg/validation"
)

// ErrNotFound is returned when no live message matches the lookup key.
var ErrNotFound = errors.New("message not found")

// CreateMessageInput carries the creation request. Name and contact fields
// are normalized before validation.
type CreateMessageInput struct {
	SenderName        string
	SenderNotifyEmail string
	RecipientName     string
	RecipientContact  string
	Body              string
	Channel           models.Channel
	UnwrapStyle       string

	RawText              string
	VoiceURL             string
	VoiceDurationSeconds float64
	TranscriptRaw        string
	TranscriptCleaned    string
}

// CreateMessage validates and persists a new message. The slug is
// regenerated until it collides with no existing message, soft-deleted ones
// included.
func CreateMessage(input CreateMessageInput) (*models.Message, error) {
	senderName := validation.CleanSpace(input.SenderName)
	recipientName := validation.CleanSpace(input.RecipientName)
	recipientContact := validation.CleanSpace(input.RecipientContact)

	if senderName == "" {
		return nil, validation.Errorf("senderName is required")
	}
	if recipientName == "" {
		return nil, validation.Errorf("recipientName is required")
	}
	if recipientContact == "" && validation.RecipientContactRequired() {
		return nil, validation.Errorf("recipientContact is required")
	}
	notifyEmail, err := validation.OptionalEmail(input.SenderNotifyEmail)
	if err != nil {
		return nil, err
	}
	body, err := validation.Body(input.Body)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}

	slug := genSlug()
	for slugTaken(doc, slug) {
		slug = genSlug()
	}

	channel := input.Channel
	if channel == "" {
		channel = models.ChannelSMS
	}
	style := input.UnwrapStyle
	if style == "" {
		style = randomStyle()
	}

	msg := models.Message{
		ID:                   utils.GenID(),
		SenderName:           senderName,
		SenderNotifyEmail:    notifyEmail,
		RecipientName:        recipientName,
		RecipientContact:     recipientContact,
		Channel:              channel,
		Body:                 body,
		UnwrapStyle:          style,
		ShortLinkSlug:        slug,
		Status:               models.StatusSent,
		CreatedAt:            time.Now().UTC(),
		RawText:              input.RawText,
		VoiceURL:             input.VoiceURL,
		VoiceDurationSeconds: input.VoiceDurationSeconds,
		TranscriptRaw:        input.TranscriptRaw,
		TranscriptCleaned:    input.TranscriptCleaned,
	}

	doc.Messages = append(doc.Messages, msg)
	if err := persistLocked(doc); err != nil {
		return nil, err
	}
	logger.Log.Info("message_created", zap.String("id", msg.ID), zap.String("slug", msg.ShortLinkSlug))
	return &msg, nil
}

// GetMessageBySlug returns the live message with the given slug.
func GetMessageBySlug(slug string) (*models.Message, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.ShortLinkSlug == slug && m.Live() {
			out := *m
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// GetMessageByID returns the live message with the given id.
func GetMessageByID(id string) (*models.Message, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.ID == id && m.Live() {
			out := *m
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteMessageByID soft-deletes the message. Returns false when the message
// does not exist or is already deleted; repeating a delete is a no-op.
func DeleteMessageByID(id string) (bool, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return false, err
	}
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.ID == id && m.Live() {
			now := time.Now().UTC()
			m.DeletedAt = &now
			if err := persistLocked(doc); err != nil {
				return false, err
			}
			logger.Log.Info("message_soft_deleted", zap.String("id", id))
			return true, nil
		}
	}
	return false, nil
}

// ListRecentMessages returns live messages, newest first, truncated to limit.
func ListRecentMessages(limit int) ([]models.Message, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}
	return recentLive(doc, limit), nil
}

// MessageWithLatestReaction pairs a message with its most recently updated
// reaction, when one exists.
type MessageWithLatestReaction struct {
	Message        models.Message   `json:"message"`
	LatestReaction *models.Reaction `json:"latestReaction"`
}

// ListRecentMessagesWithLatestReaction returns the recent live messages each
// paired with its freshest reaction. Reaction CreatedAt is refreshed on
// every upsert, so an updated reaction outranks older ones.
func ListRecentMessagesWithLatestReaction(limit int) ([]MessageWithLatestReaction, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}
	msgs := recentLive(doc, limit)
	out := make([]MessageWithLatestReaction, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageWithLatestReaction{Message: m, LatestReaction: latestReaction(doc, m.ID)})
	}
	return out, nil
}

// GetLatestReactionForMessage returns the reaction with the maximum
// CreatedAt for the message, or nil when it has none.
func GetLatestReactionForMessage(messageID string) (*models.Reaction, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}
	return latestReaction(doc, messageID), nil
}

// GetMessageWithLatestReactionBySlug resolves a slug to the live message and
// its freshest reaction.
func GetMessageWithLatestReactionBySlug(slug string) (*MessageWithLatestReaction, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, err
	}
	for i := range doc.Messages {
		m := &doc.Messages[i]
		if m.ShortLinkSlug == slug && m.Live() {
			return &MessageWithLatestReaction{Message: *m, LatestReaction: latestReaction(doc, m.ID)}, nil
		}
	}
	return nil, ErrNotFound
}

func slugTaken(doc *models.Document, slug string) bool {
	for i := range doc.Messages {
		if doc.Messages[i].ShortLinkSlug == slug {
			return true
		}
	}
	return false
}

func recentLive(doc *models.Document, limit int) []models.Message {
	live := make([]models.Message, 0, len(doc.Messages))
	for i := range doc.Messages {
		if doc.Messages[i].Live() {
			live = append(live, doc.Messages[i])
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})
	if limit > 0 && len(live) > limit {
		live = live[:limit]
	}
	return live
}

func latestReaction(doc *models.Document, messageID string) *models.Reaction {
	var latest *models.Reaction
	for i := range doc.Reactions {
		r := &doc.Reactions[i]
		if r.MessageID != messageID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil
	}
	out := *latest
	return &out
}

func randomStyle() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(models.UnwrapStyles))))
	if err != nil {
		return models.UnwrapStyles[0]
	}
	return models.UnwrapStyles[n.Int64()]
}
