package http

import (
	stdhttp "net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireroom-server/internal/config"
	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/store"
)

// NewServer builds an HTTP server with the websocket endpoint and the
// read-only status routes. missions may be nil.
func NewServer(hub *core.Hub, missions store.MissionStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	api := NewAPIHandlers(hub, missions, logger)
	router.GET("/health", api.Health)
	router.GET("/api/status", api.Status)
	router.GET("/api/stages", api.Stages)
	router.GET("/api/missions", api.Missions)

	// The websocket upgrade hijacks the connection, which gin's wrapped
	// response writer does not support, so /ws bypasses the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, *cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
		cc.AllowOrigins = append(cc.AllowOrigins, strings.TrimSuffix(o, "/"))
	}
	if len(cc.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
	}
	return cc
}
