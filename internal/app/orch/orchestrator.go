package orch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/signalhub/internal/app"
	"github.com/dkeye/signalhub/internal/app/ledger"
	"github.com/dkeye/signalhub/internal/core"
	"github.com/rs/zerolog/log"
)

// Orchestrator runs the real-time path: it mutates the registry and the
// room directory and emits the resulting events. Handlers never return
// errors; a request that does not fit the session's state is dropped.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	// Ledger is consulted only when VerifyHost is set.
	Ledger     *ledger.Ledger
	VerifyHost bool
	// Policy decides what happens to a session whose buffer is full.
	// Nil drops the frame.
	Policy app.Policy

	IDs   core.IDGenerator
	Clock func() time.Time
}

func (o *Orchestrator) newID() string {
	if o.IDs == nil {
		return core.UUIDGenerator{}.NewID()
	}
	return o.IDs.NewID()
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock()
}

// OnConnect registers a session for a freshly opened connection and greets it.
func (o *Orchestrator) OnConnect(signal core.SignalConnection, cancel context.CancelFunc) *core.Session {
	sess := core.NewSession(core.SessionID(o.newID()), signal)
	o.Registry.Bind(sess, cancel)
	o.send(sess, welcomeEvent{Type: EventWelcome, ClientID: sess.ID()})
	return sess
}

// OnDisconnect detaches the session from its room and forgets it.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	o.detach(sess)
	o.Registry.Unbind(sid)
}

// send delivers one event to one session. Closed connections are skipped
// silently; any other failure is logged and swallowed.
func (o *Orchestrator) send(to *core.Session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal event")
		return
	}
	o.deliver(to, b)
}

// broadcast marshals once and delivers to every target independently.
func (o *Orchestrator) broadcast(targets []*core.Session, v any) {
	if len(targets) == 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal event")
		return
	}
	for _, t := range targets {
		o.deliver(t, b)
	}
}

func (o *Orchestrator) deliver(to *core.Session, frame core.Frame) {
	err := to.Signal().TrySend(frame)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrConnClosed):
		log.Debug().Str("module", "orch").Str("sid", string(to.ID())).Msg("skip send to closed connection")
	case errors.Is(err, core.ErrBackpressure) && o.Policy != nil && o.Policy.OnBackPressure(to) == app.KickMember:
		log.Warn().Str("module", "orch").Str("sid", string(to.ID())).Msg("slow consumer kicked")
		o.Registry.Cancel(to.ID())
	default:
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(to.ID())).Msg("send dropped")
	}
}
