package core

import (
	"github.com/dkeye/signalhub/internal/domain"
)

// RoomService is the core-facing API of a live room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Code() domain.RoomCode
	MemberCount() int

	// Add attaches the session and returns the members that were present
	// before it. ok is false when the room was already closed. A non-nil
	// announce runs under the room lock, so frames it enqueues are ordered
	// with every other membership change of the room.
	Add(s *Session, announce Announce) (others []*Session, ok bool)
	// Remove detaches the session and returns who is left. The room closes
	// for good once its last member leaves. announce runs as in Add.
	Remove(s *Session, announce Announce) (remaining []*Session, removed bool)
	// WithMembers runs fn under the room's read lock. It returns false
	// without calling fn when the room is closed.
	WithMembers(fn func(members []*Session)) bool
	Closed() bool
}

// Announce receives the peers affected by a membership change. It must only
// enqueue frames; it must not block or touch room membership.
type Announce func(peers []*Session)

type RoomInfo struct {
	Code        domain.RoomCode `json:"roomId"`
	MemberCount int             `json:"clientCount"`
}

// RoomManager is the live room directory: rooms appear on first attach and
// disappear when they empty.
type RoomManager interface {
	Attach(code domain.RoomCode, s *Session, announce Announce) (others []*Session)
	Detach(s *Session, announce Announce) (code domain.RoomCode, remaining []*Session, ok bool)
	Get(code domain.RoomCode) (RoomService, bool)
	Has(code domain.RoomCode) bool
	List() []RoomInfo
	Count() int
}
