package models

import "time"

// AllowedReactions is the fixed emoji set a recipient may react with. Any
// other value is a validation failure and is never stored.
var AllowedReactions = []string{"💛", "😊", "😭", "🥹", "😌", "🙏", "🫶", "✨"}

// IsAllowedReaction reports whether the emoji belongs to the allow-list.
func IsAllowedReaction(emoji string) bool {
	for _, e := range AllowedReactions {
		if e == emoji {
			return true
		}
	}
	return false
}

// Reaction is a single recipient's reaction to a message. There is at most
// one row per (MessageID, RecipientFingerprint) pair; a repeated reaction
// from the same fingerprint overwrites Emoji and CreatedAt in place.
type Reaction struct {
	ID                   string    `json:"id"`
	MessageID            string    `json:"messageId"`
	Emoji                string    `json:"emoji"`
	CreatedAt            time.Time `json:"createdAt"`
	RecipientFingerprint string    `json:"recipientFingerprint"`
}
