package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/dkeye/signalhub/internal/app/ledger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RoomHandler serves the ledger over REST.
type RoomHandler struct {
	ledger *ledger.Ledger
}

func NewRoomHandler(l *ledger.Ledger) *RoomHandler {
	if l == nil {
		panic("ledger cannot be nil for RoomHandler")
	}
	return &RoomHandler{ledger: l}
}

type joinRoomRequest struct {
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role"`
	HostToken   *string `json:"hostToken"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	created, err := h.ledger.CreateRoom()
	if err != nil {
		handleLedgerError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(created.RoomID)).Msg("room created")
	c.JSON(http.StatusCreated, created)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	summary, err := h.ledger.GetRoomSummary(c.Param("roomId"))
	if err != nil {
		handleLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// JoinRoom accepts an empty body; a non-empty body must be a JSON object.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, kindInvalidBody, "Request body could not be read")
		return
	}
	var req joinRoomRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("bad join body")
			errorResponse(c, http.StatusBadRequest, kindInvalidBody, "Request body must be a JSON object")
			return
		}
	}

	joined, err := h.ledger.JoinRoom(c.Param("roomId"), ledger.JoinOptions{
		DisplayName: req.DisplayName,
		Role:        req.Role,
		HostToken:   req.HostToken,
	})
	if err != nil {
		log.Info().Err(err).Str("module", "adapters.http").Str("room", c.Param("roomId")).Msg("join rejected")
		handleLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, joined)
}
