package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/dkeye/signalhub/internal/app/ledger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	kindRoomNotFound     = "RoomNotFound"
	kindInvalidHostToken = "InvalidHostToken"
	kindInvalidBody      = "InvalidBody"
	kindInternal         = "InternalError"
)

func errorResponse(c *gin.Context, code int, kind, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": kind, "message": message})
}

func handleLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrRoomNotFound):
		errorResponse(c, http.StatusNotFound, kindRoomNotFound, "Room not found")
	case errors.Is(err, ledger.ErrInvalidHostToken):
		errorResponse(c, http.StatusForbidden, kindInvalidHostToken, "Host token is missing or does not match")
	default:
		log.Error().
			Err(err).
			Str("module", "adapters.http").
			Str("path", c.Request.URL.Path).
			Str("stack", string(debug.Stack())).
			Msg("unhandled internal server error")
		errorResponse(c, http.StatusInternalServerError, kindInternal, "An unexpected error occurred")
	}
}
