package http

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/dkeye/signalhub/internal/adapters/rtc"
	"github.com/dkeye/signalhub/internal/adapters/signal"
	"github.com/dkeye/signalhub/internal/app/orch"
	"github.com/dkeye/signalhub/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Str("module", "adapters.http").
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("stack", string(debug.Stack())).
			Msg("handler panic")
		errorResponse(c, http.StatusInternalServerError, kindInternal, "An unexpected error occurred")
	})
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(recovery())

	rooms := NewRoomHandler(o.Ledger)
	status := newStatusHandler(cfg, o)
	iceConfig := rtc.WebRTCConfig(cfg.ICEServers)
	ctrl := signal.NewSignalWSController(o, cfg)

	log.Info().Str("module", "adapters.http").Int("ice_servers", len(iceConfig.ICEServers)).Msg("router setup")

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/status", status.Status)
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": iceConfig.ICEServers})
	})
	api.POST("/rooms", rooms.CreateRoom)
	api.GET("/rooms/:roomId", rooms.GetRoom)
	api.POST("/rooms/:roomId/join", rooms.JoinRoom)

	return r
}
