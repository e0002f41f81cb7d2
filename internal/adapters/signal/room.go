package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/app"
	"github.com/avolkov/streamcast/internal/domain"
)

func (ctl *Controller) handleJoin(conn domain.ConnID, c *wsConn, data []byte) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad payload")
		return
	}

	roomID := domain.RoomID(p.Room)
	res, err := ctl.Coord.Join(conn, roomID, p.Name)
	if err != nil {
		ctl.sendError(c, reason(err))
		return
	}

	ctl.sendJSON(c, app.RoleEvent{
		Type:        "role-assigned",
		Room:        roomID,
		Role:        res.Role,
		Streamer:    res.Streamer,
		ViewerCount: res.ViewerCount,
	})
	if res.Role == "viewer" {
		ctl.sendJSON(c, app.ChatHistoryEvent{
			Type:     "chat-history",
			Room:     roomID,
			Messages: res.History,
		})
	}
}

func (ctl *Controller) handleStartBroadcast(conn domain.ConnID, c *wsConn, data []byte) {
	type startPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p startPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad start-broadcast payload")
		ctl.sendError(c, "bad payload")
		return
	}

	roomID := domain.RoomID(p.Room)
	history, err := ctl.Coord.StartBroadcast(conn, roomID, p.Name)
	if err != nil {
		ctl.sendError(c, reason(err))
		return
	}

	ctl.sendJSON(c, app.RoleEvent{
		Type: "role-assigned",
		Room: roomID,
		Role: "streamer",
	})
	ctl.sendJSON(c, app.ChatHistoryEvent{
		Type:     "chat-history",
		Room:     roomID,
		Messages: history,
	})
}

func (ctl *Controller) handleStopBroadcast(conn domain.ConnID, c *wsConn, data []byte) {
	type stopPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p stopPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad stop-broadcast payload")
		ctl.sendError(c, "bad payload")
		return
	}

	if err := ctl.Coord.StopBroadcast(conn, domain.RoomID(p.Room)); err != nil {
		ctl.sendError(c, reason(err))
		return
	}
	ctl.sendJSON(c, struct {
		Type string        `json:"type"`
		Room domain.RoomID `json:"room"`
	}{Type: "broadcast-stopped", Room: domain.RoomID(p.Room)})
}
