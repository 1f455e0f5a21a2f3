package signal

import (
	"github.com/dkeye/signalhub/internal/app/orch"
	"github.com/dkeye/signalhub/internal/core"
)

func (ctl *SignalWSController) handleRelay(sid core.SessionID, env envelope) {
	target, ok := env.str("targetClientId")
	if !ok {
		return
	}
	ctl.Orch.Signal(sid, orch.SignalRequest{
		TargetClientID: target,
		Payload:        env["payload"],
	})
}

func (ctl *SignalWSController) handleChat(sid core.SessionID, env envelope) {
	text, ok := env.str("text")
	if !ok {
		return
	}
	messageID, _ := env.str("messageId")
	ctl.Orch.Chat(sid, orch.ChatRequest{Text: text, MessageID: messageID})
}
