package app

import (
	"sort"
	"sync"

	"github.com/dkeye/signalhub/internal/core"
	"github.com/dkeye/signalhub/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomDirectory maps normalized room codes to live rooms. The map lock is
// held only for lookups and map edits; membership changes take the room's
// own lock.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]core.RoomService
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{rooms: make(map[domain.RoomCode]core.RoomService)}
}

var _ core.RoomManager = (*RoomDirectory)(nil)

func (d *RoomDirectory) getOrCreate(code domain.RoomCode) core.RoomService {
	d.mu.RLock()
	room, ok := d.rooms[code]
	d.mu.RUnlock()
	if ok && !room.Closed() {
		return room
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok = d.rooms[code]; ok && !room.Closed() {
		return room
	}
	room = core.NewRoomService(code)
	d.rooms[code] = room
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("room opened")
	return room
}

// Attach adds the session to the room for code, creating the room if needed,
// and returns the members that were already there. A room closed by a
// concurrent detach is replaced rather than joined.
func (d *RoomDirectory) Attach(code domain.RoomCode, s *core.Session, announce core.Announce) []*core.Session {
	for {
		room := d.getOrCreate(code)
		if others, ok := room.Add(s, announce); ok {
			return others
		}
	}
}

// Detach removes the session from its current room and returns the room code
// and the members still inside. ok is false when the session was not in a room.
func (d *RoomDirectory) Detach(s *core.Session, announce core.Announce) (domain.RoomCode, []*core.Session, bool) {
	code, ok := s.Room()
	if !ok {
		return "", nil, false
	}
	room, ok := d.Get(code)
	if !ok {
		return "", nil, false
	}
	remaining, removed := room.Remove(s, announce)
	if !removed {
		return "", nil, false
	}
	if room.Closed() {
		d.mu.Lock()
		if cur, ok := d.rooms[code]; ok && cur == room {
			delete(d.rooms, code)
			log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("room closed")
		}
		d.mu.Unlock()
	}
	return code, remaining, true
}

func (d *RoomDirectory) Get(code domain.RoomCode) (core.RoomService, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[code]
	return room, ok
}

func (d *RoomDirectory) Has(code domain.RoomCode) bool {
	_, ok := d.Get(code)
	return ok
}

func (d *RoomDirectory) List() []core.RoomInfo {
	d.mu.RLock()
	out := make([]core.RoomInfo, 0, len(d.rooms))
	rooms := make([]core.RoomService, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mu.RUnlock()
	for _, r := range rooms {
		out = append(out, core.RoomInfo{Code: r.Code(), MemberCount: r.MemberCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (d *RoomDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
