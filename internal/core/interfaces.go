package core

import (
	"time"

	"github.com/avolkov/streamcast/internal/domain"
)

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// SignalConnection abstracts a connection's outbound messaging endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Recorder is the durable-store collaborator. Calls are fire-and-forget:
// live room state never depends on their success, failures are logged and
// ignored by the caller.
type Recorder interface {
	SaveMessage(room domain.RoomID, msg domain.Message) error
	SaveStreamStart(room domain.RoomID, streamer string, at time.Time) error
	SaveStreamEnd(room domain.RoomID, streamer string, at time.Time) error
}

// Clock lets tests drive time deterministically.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
