package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/avolkov/streamcast/internal/app"
	"github.com/avolkov/streamcast/internal/core"
)

func newTestServer(t *testing.T, pingPeriod time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := app.NewRegistry(20, 100)
	limiter := app.NewChatLimiter(core.RealClock{}, time.Millisecond)
	coord := app.NewCoordinator(reg, limiter, nil, 50)
	ctl := NewController(coord, nil, 32768, pingPeriod)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialTest(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewController_PingPeriodDefault(t *testing.T) {
	ctl := NewController(nil, nil, 0, 0)
	if ctl.PingPeriod <= 0 {
		t.Fatalf("expected a positive default ping period, got %v", ctl.PingPeriod)
	}
}

func TestWritePump_Keepalive(t *testing.T) {
	srv := newTestServer(t, 20*time.Millisecond)
	conn := dialTest(t, srv)

	pings := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})

	// Control frames are surfaced while reading, so keep a reader running.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pings:
	case <-time.After(2 * time.Second):
		t.Fatalf("no keepalive ping within 2s")
	}
}

func TestHandleSignal_Welcome(t *testing.T) {
	srv := newTestServer(t, time.Minute)
	conn := dialTest(t, srv)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		Conn string `json:"conn"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if msg.Type != "welcome" || msg.Conn == "" {
		t.Fatalf("expected welcome with a connection id, got %+v", msg)
	}
}
