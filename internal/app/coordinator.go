package app

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/core"
	"github.com/avolkov/streamcast/internal/domain"
)

// Coordinator is the control surface binding connections to rooms and
// roles, and unwinding all state on disconnect. Mutating operations are
// serialized by one mutex, so two events for the same room never interleave
// partially; relaying is read-only and bypasses it.
//
// Broadcasts are emitted while the in-memory transition is applied, before
// and independently of any durable-store write: a slow or failing store
// never stalls live relaying.
type Coordinator struct {
	mu      sync.Mutex
	reg     *Registry
	limiter *ChatLimiter
	rec     core.Recorder // optional

	historyLimit int
}

func NewCoordinator(reg *Registry, limiter *ChatLimiter, rec core.Recorder, historyLimit int) *Coordinator {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Coordinator{reg: reg, limiter: limiter, rec: rec, historyLimit: historyLimit}
}

func (c *Coordinator) Registry() *Registry { return c.reg }

// JoinResult is the direct reply material for a join.
type JoinResult struct {
	Role        string
	Streamer    string
	ViewerCount int
	History     []domain.Message
}

// Join binds the connection to a room. Without a live streamer the caller
// is parked with role awaiting-stream and occupies no slot; otherwise
// viewer admission is attempted and, on success, the existing members are
// told about the newcomer.
func (c *Coordinator) Join(conn domain.ConnID, roomID domain.RoomID, name string) (JoinResult, error) {
	if err := validateIdentity(roomID, name); err != nil {
		return JoinResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reg.UpdateName(conn, name)
	c.detachLocked(conn, roomID)

	room := c.reg.GetOrCreate(roomID)
	streamer, live := room.Streamer()
	if !live {
		// Rejoin after the streamer left: release any stale viewer slot
		// before parking.
		room.RemoveViewer(conn)
		c.reg.BindWaiting(conn, roomID)
		log.Info().Str("module", "app.coordinator").Str("conn", string(conn)).Str("room", string(roomID)).Msg("join, awaiting stream")
		return JoinResult{Role: "awaiting-stream"}, nil
	}
	if streamer.Conn == conn {
		// The current streamer re-affirming its own room keeps the slot;
		// it never becomes its own viewer.
		return JoinResult{
			Role:        "streamer",
			Streamer:    streamer.Name,
			ViewerCount: room.ViewerCount(),
			History:     room.History(c.historyLimit),
		}, nil
	}

	count, err := room.AdmitViewer(conn, name)
	if err != nil {
		return JoinResult{}, err
	}
	c.reg.BindRoom(conn, roomID)

	c.broadcast(roomID, ViewerJoinedEvent{Type: "viewer-joined", Room: roomID, Name: name, ViewerCount: count}, conn)
	sys := room.PushSystem(fmt.Sprintf("%s joined", name))
	c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: sys}, conn)

	return JoinResult{
		Role:        "viewer",
		Streamer:    streamer.Name,
		ViewerCount: count,
		History:     room.History(c.historyLimit),
	}, nil
}

// StartBroadcast attempts to claim the streamer slot. Other members are
// told the stream is starting so awaiting-stream parkers know to request
// it; the new streamer gets the chat history replayed.
func (c *Coordinator) StartBroadcast(conn domain.ConnID, roomID domain.RoomID, name string) ([]domain.Message, error) {
	if err := validateIdentity(roomID, name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reg.UpdateName(conn, name)
	c.detachLocked(conn, roomID)

	room := c.reg.GetOrCreate(roomID)
	if err := room.ClaimStreamer(conn, name); err != nil {
		return nil, err
	}
	c.reg.BindRoom(conn, roomID)

	c.broadcast(roomID, StreamStartedEvent{Type: "stream-started", Room: roomID, Streamer: name}, conn)
	sys := room.PushSystem(fmt.Sprintf("%s started streaming", name))
	c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: sys}, conn)

	c.record(func(r core.Recorder) error { return r.SaveStreamStart(roomID, name, time.Now()) })

	return room.History(c.historyLimit), nil
}

// StopBroadcast is the streamer's voluntary release. The room stays open
// for a future streamer unless nothing references it anymore.
func (c *Coordinator) StopBroadcast(conn domain.ConnID, roomID domain.RoomID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.reg.Find(roomID)
	if !ok {
		return core.NotFoundf("room not found")
	}
	name := c.reg.NameOf(conn)
	if !room.ReleaseStreamer(conn) {
		return core.Unauthorizedf("not the active streamer")
	}

	c.broadcast(roomID, StreamEndedEvent{Type: "stream-ended", Room: roomID}, conn)
	sys := room.PushSystem("stream ended")
	c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: sys}, conn)

	c.record(func(r core.Recorder) error { return r.SaveStreamEnd(roomID, name, time.Now()) })

	if room.Empty() {
		c.reg.ClearRoom(conn)
		c.reg.RemoveIfAbandoned(roomID)
	} else {
		c.reg.BindWaiting(conn, roomID)
	}
	return nil
}

// Disconnect unwinds everything the connection holds. Reverse-lookup and
// rate-limiter entries are purged unconditionally; the room is destroyed
// once nothing references it.
func (c *Coordinator) Disconnect(conn domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := c.reg.NameOf(conn)

	if roomID, room, ok := c.reg.RoomOf(conn); ok {
		if s, live := room.Streamer(); live && s.Conn == conn {
			room.ReleaseStreamer(conn)
			c.broadcast(roomID, StreamEndedEvent{Type: "stream-ended", Room: roomID}, conn)
			sys := room.PushSystem(fmt.Sprintf("%s disconnected, stream ended", name))
			c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: sys}, conn)
			c.record(func(r core.Recorder) error { return r.SaveStreamEnd(roomID, name, time.Now()) })
		} else if count, removed := room.RemoveViewer(conn); removed {
			c.broadcast(roomID, ViewerLeftEvent{Type: "viewer-left", Room: roomID, Name: name, ViewerCount: count}, conn)
			sys := room.PushSystem(fmt.Sprintf("%s left", name))
			c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: sys}, conn)
		}
		c.reg.ClearRoom(conn)
		c.reg.RemoveIfAbandoned(roomID)
	} else if roomID, waiting := c.reg.WaitingRoomOf(conn); waiting {
		c.reg.ClearRoom(conn)
		c.reg.RemoveIfAbandoned(roomID)
	}

	c.limiter.Forget(conn)
	c.reg.Unbind(conn)
	log.Info().Str("module", "app.coordinator").Str("conn", string(conn)).Msg("disconnected")
}

// Chat runs the append pipeline: cooldown gate, sanitize, bounded append,
// then fan-out to every room member including the sender.
func (c *Coordinator) Chat(conn domain.ConnID, roomID domain.RoomID, body string) (domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.memberRoomLocked(conn, roomID)
	if err != nil {
		return domain.Message{}, err
	}
	if !c.limiter.Allow(conn) {
		return domain.Message{}, core.RateLimitedf("too fast")
	}
	clean := domain.SanitizeBody(body)
	if clean == "" {
		return domain.Message{}, core.Validationf("empty message")
	}

	msg := domain.NewMessage(conn, c.reg.NameOf(conn), clean)
	room.PushChat(msg)
	c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: msg}, "")

	c.record(func(r core.Recorder) error { return r.SaveMessage(roomID, msg) })
	return msg, nil
}

// ClearChat empties the room's log under the streamer's authority.
func (c *Coordinator) ClearChat(conn domain.ConnID, roomID domain.RoomID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.reg.Find(roomID)
	if !ok {
		return core.NotFoundf("room not found")
	}
	s, live := room.Streamer()
	if !live || s.Conn != conn {
		return core.Unauthorizedf("only the streamer can clear chat")
	}
	room.ClearChat()
	c.broadcast(roomID, ChatClearedEvent{Type: "chat-cleared", Room: roomID}, "")
	return nil
}

// PushViewerCounts fans a viewer-count snapshot out to every active room.
// Liveness aid only; invoked by the periodic sweep.
func (c *Coordinator) PushViewerCounts() {
	for _, info := range c.reg.List() {
		c.broadcast(info.ID, ViewerCountEvent{Type: "viewer-count-update", Room: info.ID, ViewerCount: info.Viewers}, "")
	}
}

// memberRoomLocked resolves the room conn is attached to and checks it
// matches the one named in the event.
func (c *Coordinator) memberRoomLocked(conn domain.ConnID, roomID domain.RoomID) (*core.Room, error) {
	if id, room, ok := c.reg.RoomOf(conn); ok {
		if id != roomID {
			return nil, core.NotFoundf("not in room %s", roomID)
		}
		return room, nil
	}
	if id, ok := c.reg.WaitingRoomOf(conn); ok && id == roomID {
		room, found := c.reg.Find(roomID)
		if found {
			return room, nil
		}
	}
	return nil, core.NotFoundf("not in room %s", roomID)
}

// detachLocked unwinds a stale binding before re-joining; a connection is
// in at most one room at a time.
func (c *Coordinator) detachLocked(conn domain.ConnID, next domain.RoomID) {
	roomID, room, ok := c.reg.RoomOf(conn)
	if !ok {
		if waitID, waiting := c.reg.WaitingRoomOf(conn); waiting && waitID != next {
			c.reg.ClearRoom(conn)
			c.reg.RemoveIfAbandoned(waitID)
		}
		return
	}
	if roomID == next {
		return
	}
	name := c.reg.NameOf(conn)
	if s, live := room.Streamer(); live && s.Conn == conn {
		room.ReleaseStreamer(conn)
		c.broadcast(roomID, StreamEndedEvent{Type: "stream-ended", Room: roomID}, conn)
		sys := room.PushSystem("stream ended")
		c.broadcast(roomID, ChatEvent{Type: "chat-message", Room: roomID, Message: sys}, conn)
		c.record(func(r core.Recorder) error { return r.SaveStreamEnd(roomID, name, time.Now()) })
	} else if count, removed := room.RemoveViewer(conn); removed {
		c.broadcast(roomID, ViewerLeftEvent{Type: "viewer-left", Room: roomID, Name: name, ViewerCount: count}, conn)
	}
	c.reg.ClearRoom(conn)
	c.reg.RemoveIfAbandoned(roomID)
}

// send marshals and pushes a frame to one live connection; backpressure
// drops are logged, never fatal.
func (c *Coordinator) send(conn domain.ConnID, v any) {
	sig, ok := c.reg.Signal(conn)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal event")
		return
	}
	if err := sig.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("conn", string(conn)).Msg("dropped frame")
	}
}

// broadcast fans an event out to all connections attached to the room,
// optionally excluding one.
func (c *Coordinator) broadcast(roomID domain.RoomID, v any, exclude domain.ConnID) {
	for _, conn := range c.reg.MembersOf(roomID) {
		if conn == exclude {
			continue
		}
		c.send(conn, v)
	}
}

// record fires a durable-store write without coupling live state to its
// outcome.
func (c *Coordinator) record(fn func(core.Recorder) error) {
	if c.rec == nil {
		return
	}
	rec := c.rec
	go func() {
		if err := fn(rec); err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Msg("store write failed")
		}
	}()
}

func validateIdentity(roomID domain.RoomID, name string) error {
	if roomID == "" {
		return core.Validationf("missing room id")
	}
	if _, err := domain.NewPeer("", name); err != nil {
		return core.Validationf("%s", err)
	}
	return nil
}
