package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/app"
	"github.com/avolkov/streamcast/internal/core"
	"github.com/avolkov/streamcast/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the WebSocket side of the relay: upgrade, pumps, JSON
// envelope dispatch and direct replies. Room semantics live in the
// coordinator; this layer never mutates rooms itself.
type Controller struct {
	Coord      *app.Coordinator
	ICEServers []webrtc.ICEServer
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(coord *app.Coordinator, iceServers []webrtc.ICEServer, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{Coord: coord, ICEServers: iceServers, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.Mutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until the
// transport drops it. Connection ids are assigned here, one per socket.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	conn := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(conn)).Str("client_token", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	sig := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Registry().BindSignal(conn, "guest", sig, cancel)

	go ctl.writePump(ctx, sig)
	go ctl.readPump(ctx, conn, sig)

	ctl.sendJSON(sig, struct {
		Type       string             `json:"type"`
		Conn       domain.ConnID      `json:"conn"`
		ICEServers []webrtc.ICEServer `json:"ice_servers,omitempty"`
	}{
		Type:       "welcome",
		Conn:       conn,
		ICEServers: ctl.ICEServers,
	})
}
