package models

import "time"

// Channel identifies how the sender intends to deliver the share link.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// MessageStatus tracks the message lifecycle.
type MessageStatus string

const (
	StatusDraft MessageStatus = "draft"
	StatusSent  MessageStatus = "sent"
)

// UnwrapStyles are the presentation variants a recipient may see. A style is
// assigned uniformly at random when the sender does not pick one.
var UnwrapStyles = []string{"A", "B", "C"}

// Message is a persisted note. After creation the only mutation is a soft
// delete via DeletedAt; every other field is immutable.
type Message struct {
	ID                string        `json:"id"`
	SenderName        string        `json:"senderName"`
	SenderNotifyEmail string        `json:"senderNotifyEmail,omitempty"`
	RecipientName     string        `json:"recipientName"`
	RecipientContact  string        `json:"recipientContact,omitempty"`
	Channel           Channel       `json:"channel"`
	Body              string        `json:"body"`
	UnwrapStyle       string        `json:"unwrapStyle"`
	ShortLinkSlug     string        `json:"shortLinkSlug"`
	Status            MessageStatus `json:"status"`
	CreatedAt         time.Time     `json:"createdAt"`
	DeletedAt         *time.Time    `json:"deletedAt,omitempty"`

	// Optional intake metadata for voice or raw-text capture paths. Stored
	// as-is, never validated beyond presence.
	RawText              string  `json:"rawText,omitempty"`
	VoiceURL             string  `json:"voiceUrl,omitempty"`
	VoiceDurationSeconds float64 `json:"voiceDurationSeconds,omitempty"`
	TranscriptRaw        string  `json:"transcriptRaw,omitempty"`
	TranscriptCleaned    string  `json:"transcriptCleaned,omitempty"`
}

// Live reports whether the message is visible to normal reads.
func (m *Message) Live() bool { return m.DeletedAt == nil }
