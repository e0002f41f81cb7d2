package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/domain"
)

func (ctl *Controller) handleChat(conn domain.ConnID, c *wsConn, data []byte) {
	type chatPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Body string `json:"body"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(c, "bad payload")
		return
	}

	if _, err := ctl.Coord.Chat(conn, domain.RoomID(p.Room), p.Body); err != nil {
		ctl.sendError(c, reason(err))
	}
}

func (ctl *Controller) handleClearChat(conn domain.ConnID, c *wsConn, data []byte) {
	type clearPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p clearPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad clear-chat payload")
		ctl.sendError(c, "bad payload")
		return
	}

	if err := ctl.Coord.ClearChat(conn, domain.RoomID(p.Room)); err != nil {
		ctl.sendError(c, reason(err))
	}
}
