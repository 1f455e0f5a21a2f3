package app

import (
	"strings"

	"github.com/dkeye/signalhub/internal/core"
)

// BackpressureAction is what to do with a session whose send buffer is full.
type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

type Policy interface {
	OnBackPressure(sess *core.Session) BackpressureAction
}

// DropPolicy loses the frame and keeps the connection.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(*core.Session) BackpressureAction { return DropFrame }

// KickPolicy disconnects slow consumers.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(*core.Session) BackpressureAction { return KickMember }

// PolicyFor maps a config value to a policy; unknown names drop.
func PolicyFor(name string) Policy {
	if strings.EqualFold(strings.TrimSpace(name), "kick") {
		return KickPolicy{}
	}
	return DropPolicy{}
}
