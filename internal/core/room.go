package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/domain"
)

// Room is a threadsafe in-memory room: one optional streamer, a bounded
// viewer set, a bounded chat log and monotonic counters. It never owns or
// closes adapter resources.
type Room struct {
	id        domain.RoomID
	createdAt time.Time

	mu         sync.RWMutex
	streamer   *domain.Peer
	viewers    map[domain.ConnID]domain.Peer
	maxViewers int
	chat       *ChatLog
	stats      domain.RoomStats
}

func NewRoom(id domain.RoomID, maxViewers, chatCap int) *Room {
	return &Room{
		id:         id,
		createdAt:  time.Now(),
		viewers:    make(map[domain.ConnID]domain.Peer),
		maxViewers: maxViewers,
		chat:       NewChatLog(chatCap),
	}
}

func (r *Room) ID() domain.RoomID    { return r.id }
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// ClaimStreamer takes the streamer slot. A connection holding a viewer slot
// is evicted from the viewer set first, so no id ever holds both roles.
func (r *Room) ClaimStreamer(conn domain.ConnID, name string) error {
	peer, err := domain.NewPeer(conn, name)
	if err != nil {
		return Validationf("%s", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.streamer != nil {
		return Conflictf("stream already active (streamer %s)", r.streamer.Name)
	}
	delete(r.viewers, conn)
	r.streamer = &peer
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(conn)).Msg("streamer claimed")
	return nil
}

// ReleaseStreamer clears the slot only if conn currently holds it and
// reports whether a change occurred. The room is deliberately left open for
// a future streamer; callers decide about destruction.
func (r *Room) ReleaseStreamer(conn domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.streamer == nil || r.streamer.Conn != conn {
		return false
	}
	r.streamer = nil
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(conn)).Msg("streamer released")
	return true
}

func (r *Room) Streamer() (domain.Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.streamer == nil {
		return domain.Peer{}, false
	}
	return *r.streamer, true
}

// AdmitViewer inserts conn into the viewer set and returns the new count.
// The current streamer's id is never admitted; a connection holds at most
// one role.
func (r *Room) AdmitViewer(conn domain.ConnID, name string) (int, error) {
	peer, err := domain.NewPeer(conn, name)
	if err != nil {
		return 0, Validationf("%s", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.streamer == nil {
		return 0, Conflictf("no active stream")
	}
	if r.streamer.Conn == conn {
		return 0, Conflictf("already streaming")
	}
	if len(r.viewers) >= r.maxViewers {
		return 0, Conflictf("room full")
	}
	r.viewers[conn] = peer
	r.stats.TotalViewers++
	if n := len(r.viewers); n > r.stats.PeakViewers {
		r.stats.PeakViewers = n
	}
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(conn)).Int("viewers", len(r.viewers)).Msg("viewer admitted")
	return len(r.viewers), nil
}

// RemoveViewer deletes conn from the viewer set if present and returns the
// new count.
func (r *Room) RemoveViewer(conn domain.ConnID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.viewers[conn]; !ok {
		return len(r.viewers), false
	}
	delete(r.viewers, conn)
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(conn)).Int("viewers", len(r.viewers)).Msg("viewer removed")
	return len(r.viewers), true
}

func (r *Room) ViewerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}

// Viewers returns a read-only snapshot for APIs.
func (r *Room) Viewers() []domain.Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Peer, 0, len(r.viewers))
	for _, p := range r.viewers {
		out = append(out, p)
	}
	return out
}

func (r *Room) IsViewer(conn domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.viewers[conn]
	return ok
}

// IsMember reports whether conn is the streamer or any viewer.
func (r *Room) IsMember(conn domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.streamer != nil && r.streamer.Conn == conn {
		return true
	}
	_, ok := r.viewers[conn]
	return ok
}

// Empty holds when no streamer is set and the viewer set is empty. A room
// for which this holds after a mutation must be destroyed by its registry.
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streamer == nil && len(r.viewers) == 0
}

func (r *Room) Stats() domain.RoomStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// PushChat appends an already-sanitized message and bumps the counter.
func (r *Room) PushChat(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat.Push(msg)
	r.stats.Messages++
}

// PushSystem appends a system narration entry and returns it for broadcast.
func (r *Room) PushSystem(body string) domain.Message {
	msg := domain.NewSystemMessage(body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat.Push(msg)
	return msg
}

// History returns the most recent limit entries, oldest-first. Never
// mutates state, safe to call repeatedly.
func (r *Room) History(limit int) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chat.Recent(limit)
}

func (r *Room) ChatLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chat.Len()
}

// ClearChat empties the log. Streamer authority is the caller's check.
func (r *Room) ClearChat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat.Clear()
}
