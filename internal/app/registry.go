package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/core"
	"github.com/avolkov/streamcast/internal/domain"
)

type sessionEntry struct {
	Name   string
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// RoomInfo is a read-only room view for APIs (no transport fields).
type RoomInfo struct {
	ID        domain.RoomID    `json:"id"`
	Streamer  string           `json:"streamer,omitempty"`
	Viewers   int              `json:"viewers"`
	Stats     domain.RoomStats `json:"stats"`
	CreatedAt time.Time        `json:"created_at"`
}

// Registry owns the room map, the connection→room reverse map and the live
// session table. One lock guards all three, so a connection is never
// observed bound to a room that no longer exists.
//
// The reverse map holds a connection iff it is the streamer or a viewer of
// exactly the room it maps to. Connections that joined a streamerless room
// (role awaiting-stream) occupy no slot and are tracked in waiting instead,
// so a room abandoned by its last waiting connection still gets destroyed.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]*core.Room
	byConn   map[domain.ConnID]domain.RoomID
	waiting  map[domain.ConnID]domain.RoomID
	sessions map[domain.ConnID]*sessionEntry

	maxViewers int
	chatCap    int
}

func NewRegistry(maxViewers, chatCap int) *Registry {
	return &Registry{
		rooms:      make(map[domain.RoomID]*core.Room),
		byConn:     make(map[domain.ConnID]domain.RoomID),
		waiting:    make(map[domain.ConnID]domain.RoomID),
		sessions:   make(map[domain.ConnID]*sessionEntry),
		maxViewers: maxViewers,
		chatCap:    chatCap,
	}
}

// BindSignal registers a live connection's outbound endpoint.
func (r *Registry) BindSignal(conn domain.ConnID, name string, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn] = &sessionEntry{Name: name, Signal: sig, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("bound signal")
}

func (r *Registry) Unbind(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[conn]; ok && e.Cancel != nil {
		e.Cancel()
	}
	delete(r.sessions, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbind session")
}

func (r *Registry) UpdateName(conn domain.ConnID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[conn]; ok {
		e.Name = name
	}
}

func (r *Registry) NameOf(conn domain.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[conn]; ok {
		return e.Name
	}
	return ""
}

// Signal returns the outbound endpoint of a live connection. The second
// return is false for ids the transport no longer tracks; relays to those
// are dropped, never errors.
func (r *Registry) Signal(conn domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[conn]
	if !ok {
		return nil, false
	}
	return e.Signal, true
}

// GetOrCreate returns the room or lazily creates an empty one. Never fails.
func (r *Registry) GetOrCreate(id domain.RoomID) *core.Room {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok = r.rooms[id]; ok {
		return room
	}
	room = core.NewRoom(id, r.maxViewers, r.chatCap)
	r.rooms[id] = room
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return room
}

func (r *Registry) Find(id domain.RoomID) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

func (r *Registry) Remove(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room removed")
}

// RoomOf is the O(1) reverse lookup for role-holding connections.
func (r *Registry) RoomOf(conn domain.ConnID) (domain.RoomID, *core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byConn[conn]
	if !ok {
		return "", nil, false
	}
	room, ok := r.rooms[id]
	if !ok {
		return "", nil, false
	}
	return id, room, true
}

// WaitingRoomOf reports the room a roleless (awaiting-stream) connection is
// parked in.
func (r *Registry) WaitingRoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.waiting[conn]
	return id, ok
}

func (r *Registry) BindRoom(conn domain.ConnID, id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waiting, conn)
	r.byConn[conn] = id
}

func (r *Registry) BindWaiting(conn domain.ConnID, id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, conn)
	r.waiting[conn] = id
}

// ClearRoom drops any room association, role-holding or waiting.
func (r *Registry) ClearRoom(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, conn)
	delete(r.waiting, conn)
}

// MembersOf lists every connection attached to the room: streamer, viewers
// and awaiting-stream parkers. Used for fan-out.
func (r *Registry) MembersOf(id domain.RoomID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ConnID, 0, 8)
	for conn, rid := range r.byConn {
		if rid == id {
			out = append(out, conn)
		}
	}
	for conn, rid := range r.waiting {
		if rid == id {
			out = append(out, conn)
		}
	}
	return out
}

// RemoveIfAbandoned destroys the room once nothing references it: no
// streamer, no viewers and no waiting connections. Evaluated after every
// mutation that can empty a room.
func (r *Registry) RemoveIfAbandoned(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	if !room.Empty() {
		return false
	}
	for _, rid := range r.waiting {
		if rid == id {
			return false
		}
	}
	delete(r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("empty room destroyed")
	return true
}

// List returns room snapshots for the REST API.
func (r *Registry) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		info := RoomInfo{
			ID:        id,
			Viewers:   room.ViewerCount(),
			Stats:     room.Stats(),
			CreatedAt: room.CreatedAt(),
		}
		if s, ok := room.Streamer(); ok {
			info.Streamer = s.Name
		}
		out = append(out, info)
	}
	return out
}

func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
