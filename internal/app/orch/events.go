package orch

import (
	"encoding/json"

	"github.com/dkeye/signalhub/internal/core"
	"github.com/dkeye/signalhub/internal/domain"
)

// Outbound event types.
const (
	EventWelcome    = "welcome"
	EventRoomState  = "room-state"
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
	EventSignal     = "signal"
	EventChat       = "chat"
)

type welcomeEvent struct {
	Type     string         `json:"type"`
	ClientID core.SessionID `json:"clientId"`
}

type roomStateEvent struct {
	Type         string          `json:"type"`
	Participants []domain.Member `json:"participants"`
}

type userJoinedEvent struct {
	Type        string        `json:"type"`
	Participant domain.Member `json:"participant"`
}

type userLeftEvent struct {
	Type     string         `json:"type"`
	ClientID core.SessionID `json:"clientId"`
}

type signalEvent struct {
	Type    string          `json:"type"`
	From    core.SessionID  `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type chatEvent struct {
	Type      string         `json:"type"`
	ClientID  core.SessionID `json:"clientId"`
	Text      string         `json:"text"`
	MessageID string         `json:"messageId"`
	Timestamp int64          `json:"timestamp"`
}
