package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/domain"
)

// handleRelay forwards one of the three negotiation kinds. The payload
// stays opaque end to end; only the sender id is added for the target.
func (ctl *Controller) handleRelay(conn domain.ConnID, c *wsConn, kind string, data []byte) {
	type relayPayload struct {
		Type    string          `json:"type"`
		Target  string          `json:"target"`
		Payload json.RawMessage `json:"payload"`
	}
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad relay payload")
		ctl.sendError(c, "bad payload")
		return
	}

	if err := ctl.Coord.Relay(conn, kind, domain.ConnID(p.Target), p.Payload); err != nil {
		ctl.sendError(c, reason(err))
	}
}
