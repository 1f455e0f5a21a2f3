package orch

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/signalhub/internal/core"
	"github.com/rs/zerolog/log"
)

type SignalRequest struct {
	TargetClientID string
	// Payload is forwarded as-is; nil becomes JSON null.
	Payload json.RawMessage
}

type ChatRequest struct {
	Text      string
	MessageID string
}

// Signal forwards an opaque payload to one member of the sender's room.
func (o *Orchestrator) Signal(sid core.SessionID, req SignalRequest) {
	if req.TargetClientID == "" {
		return
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	code, ok := sess.Room()
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(code)
	if !ok {
		return
	}
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	// Delivered under the room lock: the target never gets a signal from a
	// sender it was already told has left.
	room.WithMembers(func(members []*core.Session) {
		var target *core.Session
		for _, m := range members {
			if m.ID() == core.SessionID(req.TargetClientID) {
				target = m
				break
			}
		}
		if target == nil || !contains(members, sess) {
			log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("target", req.TargetClientID).Msg("signal target not in room")
			return
		}
		o.send(target, signalEvent{Type: EventSignal, From: sid, Payload: payload})
	})
}

func contains(members []*core.Session, s *core.Session) bool {
	for _, m := range members {
		if m == s {
			return true
		}
	}
	return false
}

// Chat broadcasts text to the whole room, sender included.
func (o *Orchestrator) Chat(sid core.SessionID, req ChatRequest) {
	if strings.TrimSpace(req.Text) == "" {
		return
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	code, ok := sess.Room()
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(code)
	if !ok {
		return
	}
	messageID := req.MessageID
	if messageID == "" {
		messageID = o.newID()
	}
	ev := chatEvent{
		Type:      EventChat,
		ClientID:  sid,
		Text:      req.Text,
		MessageID: messageID,
		Timestamp: o.now().UnixMilli(),
	}
	room.WithMembers(func(members []*core.Session) {
		if contains(members, sess) {
			o.broadcast(members, ev)
		}
	})
}
