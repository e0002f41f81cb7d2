package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/streamcast/internal/adapters/signal"
	"github.com/avolkov/streamcast/internal/app"
	"github.com/avolkov/streamcast/internal/config"
	"github.com/avolkov/streamcast/internal/domain"
)

// ClientTokenMiddleware pins a stable token cookie on every browser; it
// identifies the client across reconnects for logging, while connection
// ids stay per-socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("StreamcastSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": coord.Registry().List()})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		id := domain.RoomID(c.Param("id"))
		room, ok := coord.Registry().Find(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		info := gin.H{
			"id":         id,
			"viewers":    room.ViewerCount(),
			"stats":      room.Stats(),
			"created_at": room.CreatedAt(),
		}
		if s, live := room.Streamer(); live {
			info["streamer"] = s.Name
		}
		c.JSON(http.StatusOK, info)
	})

	api.GET("/stats", func(c *gin.Context) {
		rooms := coord.Registry().List()
		var viewers int
		var messages int64
		for _, r := range rooms {
			viewers += r.Viewers
			messages += r.Stats.Messages
		}
		c.JSON(http.StatusOK, gin.H{
			"rooms":       len(rooms),
			"viewers":     viewers,
			"messages":    messages,
			"connections": coord.Registry().SessionCount(),
		})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
