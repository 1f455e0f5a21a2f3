package core

import (
	"sync"

	"github.com/dkeye/signalhub/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	code   domain.RoomCode
	mu     sync.RWMutex
	bySID  map[SessionID]*Session
	closed bool
}

func NewRoomService(code domain.RoomCode) RoomService {
	return &roomImpl{
		code:  code,
		bySID: make(map[SessionID]*Session),
	}
}

func (r *roomImpl) Code() domain.RoomCode { return r.code }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *roomImpl) Add(s *Session, announce Announce) ([]*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	others := r.snapshotLocked(s.ID())
	r.bySID[s.ID()] = s
	s.setRoom(r.code)
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(s.ID())).Int("members", len(r.bySID)).Msg("member added")
	if announce != nil {
		announce(others)
	}
	return others, true
}

func (r *roomImpl) Remove(s *Session, announce Announce) ([]*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.bySID[s.ID()]; !ok || cur != s {
		return nil, false
	}
	delete(r.bySID, s.ID())
	s.clearRoom()
	if len(r.bySID) == 0 {
		r.closed = true
	}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(s.ID())).Int("members", len(r.bySID)).Msg("member removed")
	remaining := r.snapshotLocked("")
	if announce != nil {
		announce(remaining)
	}
	return remaining, true
}

func (r *roomImpl) WithMembers(fn func(members []*Session)) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	fn(r.snapshotLocked(""))
	return true
}

func (r *roomImpl) snapshotLocked(skip SessionID) []*Session {
	out := make([]*Session, 0, len(r.bySID))
	for sid, s := range r.bySID {
		if sid == skip {
			continue
		}
		out = append(out, s)
	}
	return out
}
