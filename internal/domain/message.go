package domain

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxMessageLen bounds a chat body before markup escaping.
const MaxMessageLen = 500

// Message is one immutable chat-log entry. System messages narrate room
// events (joins, leaves, stream state) and carry no originating connection.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Conn      ConnID    `json:"-"`
	System    bool      `json:"system,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(conn ConnID, sender, body string) Message {
	return Message{
		ID:        ulid.Make().String(),
		Sender:    sender,
		Body:      body,
		Conn:      conn,
		Timestamp: time.Now(),
	}
}

func NewSystemMessage(body string) Message {
	return Message{
		ID:        ulid.Make().String(),
		Sender:    "system",
		Body:      body,
		System:    true,
		Timestamp: time.Now(),
	}
}

// SanitizeBody trims, truncates to MaxMessageLen runes and neutralizes
// markup-significant characters. An empty result means the message must be
// rejected. This is a content-safety transform for text rendering, not a
// transport security boundary.
func SanitizeBody(raw string) string {
	s := strings.TrimSpace(raw)
	if runes := []rune(s); len(runes) > MaxMessageLen {
		s = string(runes[:MaxMessageLen])
	}
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
