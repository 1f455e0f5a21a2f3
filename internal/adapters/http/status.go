package http

import (
	"net/http"
	"time"

	"github.com/dkeye/signalhub/internal/app/orch"
	"github.com/dkeye/signalhub/internal/config"
	"github.com/dkeye/signalhub/internal/core"
	"github.com/gin-gonic/gin"
)

const serviceName = "signalhub"

type statusHandler struct {
	mode    string
	started time.Time
	orch    *orch.Orchestrator
}

func newStatusHandler(cfg *config.Config, o *orch.Orchestrator) *statusHandler {
	return &statusHandler{mode: cfg.Mode, started: time.Now(), orch: o}
}

type statusResponse struct {
	Service     string          `json:"service"`
	Mode        string          `json:"mode"`
	Uptime      float64         `json:"uptime"`
	Rooms       int             `json:"rooms"`
	LiveRooms   int             `json:"liveRooms"`
	Connections int             `json:"connections"`
	ActiveRooms []core.RoomInfo `json:"activeRooms"`
}

func (h *statusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Service:     serviceName,
		Mode:        h.mode,
		Uptime:      time.Since(h.started).Seconds(),
		Rooms:       h.orch.Ledger.Count(),
		LiveRooms:   h.orch.Rooms.Count(),
		Connections: h.orch.Registry.Count(),
		ActiveRooms: h.orch.Rooms.List(),
	})
}
