package models

// Document is the full persisted state: every message and every reaction in
// one structured file. Collections are append-ordered on write and
// order-irrelevant on read.
type Document struct {
	Messages  []Message  `json:"messages"`
	Reactions []Reaction `json:"reactions"`
}

// Normalize migrates a freshly decoded document to the current in-memory
// shape. It is the single place where records written by older versions get
// their defaults back-filled; read paths must never null-coalesce ad hoc.
func (d *Document) Normalize() {
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	if d.Reactions == nil {
		d.Reactions = []Reaction{}
	}
	for i := range d.Messages {
		normalizeMessage(&d.Messages[i])
	}
}

// normalizeMessage back-fills fields that older documents may lack.
func normalizeMessage(m *Message) {
	if m.Channel == "" {
		m.Channel = ChannelSMS
	}
	if m.Status == "" {
		m.Status = StatusSent
	}
	if m.UnwrapStyle == "" {
		m.UnwrapStyle = UnwrapStyles[0]
	}
}
