package core

import (
	"github.com/avolkov/streamcast/internal/domain"
)

// ChatLog is a bounded, append-only message sequence. Oldest entries are
// evicted first once the cap is reached. Not safe for concurrent use on its
// own; Room serializes access.
type ChatLog struct {
	cap     int
	entries []domain.Message
}

func NewChatLog(capacity int) *ChatLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &ChatLog{cap: capacity}
}

func (l *ChatLog) Push(msg domain.Message) {
	l.entries = append(l.entries, msg)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Recent returns up to limit of the newest messages, oldest-first. The
// returned slice is a copy and never aliases the log.
func (l *ChatLog) Recent(limit int) []domain.Message {
	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]domain.Message, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

func (l *ChatLog) Len() int { return len(l.entries) }

func (l *ChatLog) Clear() { l.entries = nil }
