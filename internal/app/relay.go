package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/core"
	"github.com/avolkov/streamcast/internal/domain"
)

// Relayable message kinds.
const (
	KindOffer        = "offer"
	KindAnswer       = "answer"
	KindICECandidate = "ice-candidate"
)

// Relay forwards an opaque negotiation payload to the named target.
// Authorization is by role, never by caller-supplied fields: offers only
// from the room's current streamer, answers and candidates from any room
// member. Forwarding changes no room state.
//
// A target the transport no longer tracks is a normal outcome, not an
// error: disconnects and in-flight relays race, so stale targets are
// silently dropped. Same for a target that has since moved rooms.
func (c *Coordinator) Relay(conn domain.ConnID, kind string, target domain.ConnID, payload any) error {
	switch kind {
	case KindOffer, KindAnswer, KindICECandidate:
	default:
		return core.Validationf("unknown signal kind %q", kind)
	}
	if target == "" {
		return core.Validationf("missing target")
	}

	roomID, room, ok := c.reg.RoomOf(conn)
	if !ok {
		return core.Unauthorizedf("not a room member")
	}

	if kind == KindOffer {
		s, live := room.Streamer()
		if !live || s.Conn != conn {
			return core.Unauthorizedf("only the streamer can send offers")
		}
	} else if !room.IsMember(conn) {
		return core.Unauthorizedf("not a room member")
	}

	sig, tracked := c.reg.Signal(target)
	if !tracked {
		return nil
	}
	if !room.IsMember(target) {
		if waitID, waiting := c.reg.WaitingRoomOf(target); !waiting || waitID != roomID {
			return nil
		}
	}

	c.sendTo(sig, SignalEvent{Type: kind, From: conn, Payload: payload})
	return nil
}

func (c *Coordinator) sendTo(sig core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal signal")
		return
	}
	_ = sig.TrySend(core.Frame(b))
}
