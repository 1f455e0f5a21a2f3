package orch

import (
	"github.com/dkeye/signalhub/internal/core"
	"github.com/dkeye/signalhub/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinRequest is a decoded real-time join. Nil fields were absent or not text.
type JoinRequest struct {
	RoomID      string
	DisplayName *string
	Role        *string
	HostToken   *string
}

func (o *Orchestrator) Join(sid core.SessionID, req JoinRequest) {
	code := domain.NormalizeCode(req.RoomID)
	if code == "" {
		return
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}

	if from, ok := sess.Room(); ok {
		o.detach(sess)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("left previous room")
	}

	var displayName *string
	if req.DisplayName != nil {
		displayName = domain.NormalizeDisplayName(*req.DisplayName)
	}
	role := domain.RoleGuest
	if req.Role != nil {
		role = domain.ParseRole(*req.Role)
	}
	if role == domain.RoleHost && o.VerifyHost && o.Ledger != nil {
		if err := o.Ledger.VerifyHost(string(code), req.HostToken); err != nil {
			log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(code)).Msg("host not verified, joining as guest")
			role = domain.RoleGuest
		}
	}
	sess.SetProfile(displayName, role)

	// room-state and user-joined are enqueued under the room lock so every
	// recipient sees them in membership order.
	o.Rooms.Attach(code, sess, func(others []*core.Session) {
		roster := make([]domain.Member, 0, len(others))
		for _, m := range others {
			roster = append(roster, m.Member())
		}
		o.send(sess, roomStateEvent{Type: EventRoomState, Participants: roster})
		o.broadcast(others, userJoinedEvent{Type: EventUserJoined, Participant: sess.Member()})
	})
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(code)).Str("role", string(role)).Msg("joined room")
}

// detach removes the session from its room and tells whoever is left.
func (o *Orchestrator) detach(sess *core.Session) {
	code, remaining, ok := o.Rooms.Detach(sess, func(remaining []*core.Session) {
		o.broadcast(remaining, userLeftEvent{Type: EventUserLeft, ClientID: sess.ID()})
	})
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sess.ID())).Str("room", string(code)).Int("remaining", len(remaining)).Msg("detached")
}
