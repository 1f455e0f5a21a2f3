package core

import (
	"sync"

	"github.com/dkeye/signalhub/internal/domain"
)

type SessionID string

// Session binds the live state of one connection to its transport endpoint.
// This is what a room stores and fans out to.
// The room field is written only by the room that holds the session, under
// that room's lock.
type Session struct {
	id     SessionID
	signal SignalConnection

	mu          sync.RWMutex
	room        domain.RoomCode
	displayName *string
	role        domain.Role
}

func NewSession(id SessionID, signal SignalConnection) *Session {
	return &Session{id: id, signal: signal, role: domain.RoleGuest}
}

func (s *Session) ID() SessionID            { return s.id }
func (s *Session) Signal() SignalConnection { return s.signal }

// Room returns the code of the room the session is attached to, if any.
func (s *Session) Room() (domain.RoomCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room, s.room != ""
}

func (s *Session) SetProfile(displayName *string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayName = displayName
	s.role = role
}

func (s *Session) Member() domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Member{
		ClientID:    string(s.id),
		DisplayName: s.displayName,
		Role:        s.role,
	}
}

func (s *Session) setRoom(code domain.RoomCode) {
	s.mu.Lock()
	s.room = code
	s.mu.Unlock()
}

func (s *Session) clearRoom() {
	s.setRoom("")
}
