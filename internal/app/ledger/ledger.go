// Package ledger keeps the REST-facing record of rooms: when they were
// created, the host capability token, and every participant that joined.
// Nothing is ever removed; live connectivity is tracked elsewhere.
package ledger

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dkeye/signalhub/internal/core"
	"github.com/dkeye/signalhub/internal/domain"
	"github.com/rs/zerolog/log"
)

type room struct {
	code         domain.RoomCode
	createdAt    time.Time
	hostToken    string
	participants map[domain.ParticipantID]*domain.Participant
	order        []domain.ParticipantID
}

type Created struct {
	RoomID    domain.RoomCode `json:"roomId"`
	HostToken string          `json:"hostToken"`
	CreatedAt time.Time       `json:"createdAt"`
}

// JoinOptions carries the optional join fields. Nil means absent.
type JoinOptions struct {
	DisplayName *string
	Role        *string
	HostToken   *string
}

type Joined struct {
	RoomID        domain.RoomCode      `json:"roomId"`
	ParticipantID domain.ParticipantID `json:"participantId"`
	Role          domain.Role          `json:"role"`
	DisplayName   *string              `json:"displayName"`
	JoinedAt      time.Time            `json:"joinedAt"`
	CreatedAt     time.Time            `json:"createdAt"`
	Participants  []domain.Participant `json:"participants"`
}

type Summary struct {
	RoomID       domain.RoomCode      `json:"roomId"`
	CreatedAt    time.Time            `json:"createdAt"`
	Participants []domain.Participant `json:"participants"`
}

type Ledger struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*room

	ids      core.IDGenerator
	random   io.Reader
	now      func() time.Time
	attempts int
	exclude  func(domain.RoomCode) bool
}

type Option func(*Ledger)

func WithIDGenerator(ids core.IDGenerator) Option { return func(l *Ledger) { l.ids = ids } }

// WithRandom replaces the source used to draw room codes.
func WithRandom(r io.Reader) Option { return func(l *Ledger) { l.random = r } }

func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

func WithCodeAttempts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.attempts = n
		}
	}
}

// WithExclusion marks additional codes as taken, e.g. rooms that are live
// without a ledger entry.
func WithExclusion(taken func(domain.RoomCode) bool) Option {
	return func(l *Ledger) { l.exclude = taken }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		rooms:    make(map[domain.RoomCode]*room),
		ids:      core.UUIDGenerator{},
		random:   rand.Reader,
		now:      time.Now,
		attempts: DefaultCodeAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) CreateRoom() (Created, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	code, err := allocateCode(l.random, l.attempts, l.takenLocked)
	if err != nil {
		log.Error().Err(err).Str("module", "ledger").Int("rooms", len(l.rooms)).Msg("room code allocation failed")
		return Created{}, fmt.Errorf("create room: %w", err)
	}
	r := &room{
		code:         code,
		createdAt:    l.now().UTC(),
		hostToken:    l.ids.NewID(),
		participants: make(map[domain.ParticipantID]*domain.Participant),
	}
	l.rooms[code] = r
	log.Info().Str("module", "ledger").Str("room", string(code)).Msg("room created")
	return Created{RoomID: code, HostToken: r.hostToken, CreatedAt: r.createdAt}, nil
}

func (l *Ledger) takenLocked(code domain.RoomCode) bool {
	if _, ok := l.rooms[code]; ok {
		return true
	}
	return l.exclude != nil && l.exclude(code)
}

// JoinRoom records a new participant. Host joins must present the room's
// token; guests need none.
func (l *Ledger) JoinRoom(rawCode string, opts JoinOptions) (Joined, error) {
	code := domain.NormalizeCode(rawCode)
	role := domain.RoleGuest
	if opts.Role != nil {
		role = domain.ParseRole(*opts.Role)
	}
	var displayName *string
	if opts.DisplayName != nil {
		displayName = domain.NormalizeDisplayName(*opts.DisplayName)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.roomLocked(code)
	if !ok {
		return Joined{}, fmt.Errorf("join %q: %w", code, ErrRoomNotFound)
	}
	if role == domain.RoleHost && !tokenMatches(r.hostToken, opts.HostToken) {
		log.Warn().Str("module", "ledger").Str("room", string(code)).Msg("host join rejected")
		return Joined{}, fmt.Errorf("join %q: %w", code, ErrInvalidHostToken)
	}

	p := &domain.Participant{
		ID:          domain.ParticipantID(l.ids.NewID()),
		DisplayName: displayName,
		Role:        role,
		JoinedAt:    l.now().UTC(),
	}
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
	log.Info().Str("module", "ledger").Str("room", string(code)).Str("participant", string(p.ID)).Str("role", string(role)).Msg("participant joined")

	return Joined{
		RoomID:        code,
		ParticipantID: p.ID,
		Role:          p.Role,
		DisplayName:   p.DisplayName,
		JoinedAt:      p.JoinedAt,
		CreatedAt:     r.createdAt,
		Participants:  r.participantsLocked(),
	}, nil
}

// VerifyHost checks a host token without recording anything.
func (l *Ledger) VerifyHost(rawCode string, token *string) error {
	code := domain.NormalizeCode(rawCode)
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.roomLocked(code)
	if !ok {
		return fmt.Errorf("verify %q: %w", code, ErrRoomNotFound)
	}
	if !tokenMatches(r.hostToken, token) {
		return fmt.Errorf("verify %q: %w", code, ErrInvalidHostToken)
	}
	return nil
}

func (l *Ledger) GetRoomSummary(rawCode string) (Summary, error) {
	code := domain.NormalizeCode(rawCode)
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.roomLocked(code)
	if !ok {
		return Summary{}, fmt.Errorf("summary %q: %w", code, ErrRoomNotFound)
	}
	return Summary{RoomID: code, CreatedAt: r.createdAt, Participants: r.participantsLocked()}, nil
}

// HasRoom never fails; blank or malformed input is simply not a room.
func (l *Ledger) HasRoom(rawCode string) bool {
	code := domain.NormalizeCode(rawCode)
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.roomLocked(code)
	return ok
}

// roomLocked skips the map for codes the allocator could never have issued.
func (l *Ledger) roomLocked(code domain.RoomCode) (*room, bool) {
	if !code.Valid() {
		return nil, false
	}
	r, ok := l.rooms[code]
	return r, ok
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rooms)
}

// participantsLocked returns copies in join order.
func (r *room) participantsLocked() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.participants[id])
	}
	return out
}

func tokenMatches(want string, got *string) bool {
	if got == nil || *got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(*got)) == 1
}
