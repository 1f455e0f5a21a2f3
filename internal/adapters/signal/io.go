package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/signalhub/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Inbound message types.
const (
	typeJoin   = "join"
	typeSignal = "signal"
	typeChat   = "chat"
)

// envelope is an inbound frame decoded one level deep, so each handler can
// check its own fields and ignore values of the wrong type.
type envelope map[string]json.RawMessage

func (e envelope) str(key string) (string, bool) {
	raw, ok := e[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// optStr is str as a pointer, nil when absent or not text.
func (e envelope) optStr(key string) *string {
	s, ok := e.str(key)
	if !ok {
		return nil
	}
	return &s
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(sid)
		ctl.limiter.Forget(sid)
		cancel()
		c.Close()
	}()

	pongWait := ctl.cfg.PongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				ctl.handleReadError(sid, c, err)
			}
			return
		}
		ctl.handleFrame(sid, data)
	}
}

// handleReadError logs the cause and, for anything but a clean close,
// tells the peer the connection is going away abnormally.
func (ctl *SignalWSController) handleReadError(sid core.SessionID, c *WsSignalConn, err error) {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("client disconnected")
		return
	}
	log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "")
	if werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(ctl.cfg.WriteWait)); werr != nil {
		log.Debug().Err(werr).Str("module", "signal").Str("sid", string(sid)).Msg("close frame not sent")
	}
}

// handleFrame classifies one inbound frame and hands it to its handler.
// Anything that is not a JSON object with a known type is dropped.
func (ctl *SignalWSController) handleFrame(sid core.SessionID, data []byte) {
	if !ctl.limiter.Allow(sid) {
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited, frame dropped")
		return
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env == nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	msgType, _ := env.str("type")
	switch msgType {
	case typeJoin:
		ctl.handleJoin(sid, env)
	case typeSignal:
		ctl.handleRelay(sid, env)
	case typeChat:
		ctl.handleChat(sid, env)
	default:
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("type", msgType).Msg("unknown message type")
	}
}
