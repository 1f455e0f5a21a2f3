package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// ParseRole only grants host for the exact string "host".
func ParseRole(raw string) Role {
	if raw == string(RoleHost) {
		return RoleHost
	}
	return RoleGuest
}

// NormalizeDisplayName trims the name; an empty result means no name.
func NormalizeDisplayName(raw string) *string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil
	}
	return &name
}

type ParticipantID string

// Participant is an append-only ledger record of someone joining a room.
// No transport or lifecycle logic here.
type Participant struct {
	ID          ParticipantID `json:"participantId"`
	DisplayName *string       `json:"displayName"`
	Role        Role          `json:"role"`
	JoinedAt    time.Time     `json:"joinedAt"`
}

// Member is the roster view of a live connection inside a room.
type Member struct {
	ClientID    string  `json:"clientId"`
	DisplayName *string `json:"displayName"`
	Role        Role    `json:"role"`
}
