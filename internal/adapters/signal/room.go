package signal

import (
	"github.com/dkeye/signalhub/internal/app/orch"
	"github.com/dkeye/signalhub/internal/core"
)

func (ctl *SignalWSController) handleJoin(sid core.SessionID, env envelope) {
	roomID, ok := env.str("roomId")
	if !ok {
		return
	}
	ctl.Orch.Join(sid, orch.JoinRequest{
		RoomID:      roomID,
		DisplayName: env.optStr("displayName"),
		Role:        env.optStr("role"),
		HostToken:   env.optStr("hostToken"),
	})
}
