package app

import (
	"github.com/avolkov/streamcast/internal/domain"
)

// Outbound notification payloads. The Type field doubles as the wire
// discriminator; adapters marshal these as-is.

type RoleEvent struct {
	Type        string        `json:"type"` // "role-assigned"
	Room        domain.RoomID `json:"room"`
	Role        string        `json:"role"` // "streamer" | "viewer" | "awaiting-stream"
	Streamer    string        `json:"streamer,omitempty"`
	ViewerCount int           `json:"viewer_count,omitempty"`
}

type StreamStartedEvent struct {
	Type     string        `json:"type"` // "stream-started"
	Room     domain.RoomID `json:"room"`
	Streamer string        `json:"streamer"`
}

type StreamEndedEvent struct {
	Type string        `json:"type"` // "stream-ended"
	Room domain.RoomID `json:"room"`
}

type ViewerJoinedEvent struct {
	Type        string        `json:"type"` // "viewer-joined"
	Room        domain.RoomID `json:"room"`
	Name        string        `json:"name"`
	ViewerCount int           `json:"viewer_count"`
}

type ViewerLeftEvent struct {
	Type        string        `json:"type"` // "viewer-left"
	Room        domain.RoomID `json:"room"`
	Name        string        `json:"name"`
	ViewerCount int           `json:"viewer_count"`
}

type ViewerCountEvent struct {
	Type        string        `json:"type"` // "viewer-count-update"
	Room        domain.RoomID `json:"room"`
	ViewerCount int           `json:"viewer_count"`
}

type ChatEvent struct {
	Type    string         `json:"type"` // "chat-message"
	Room    domain.RoomID  `json:"room"`
	Message domain.Message `json:"message"`
}

type ChatHistoryEvent struct {
	Type     string           `json:"type"` // "chat-history"
	Room     domain.RoomID    `json:"room"`
	Messages []domain.Message `json:"messages"`
}

type ChatClearedEvent struct {
	Type string        `json:"type"` // "chat-cleared"
	Room domain.RoomID `json:"room"`
}

// SignalEvent re-wraps a relayed negotiation payload with the sender's id
// so the target can address its response.
type SignalEvent struct {
	Type    string        `json:"type"` // "offer" | "answer" | "ice-candidate"
	From    domain.ConnID `json:"from"`
	Payload any           `json:"payload"`
}
