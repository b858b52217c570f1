package game

import (
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrUsernameTaken  = errors.New("username already taken in this room")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrNotAuthorized  = errors.New("not authorized")
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Store is the single source of truth for rooms in this process. All
// mutation goes through MutateRoom, which serializes writers per room;
// GetRoom hands back a detached snapshot so readers never observe torn
// state and never hold a lock.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

// GenerateRoomCode returns a random 6-character uppercase-alphanumeric
// code, retrying until it is unique among current rooms.
func (s *Store) GenerateRoomCode() string {
	for {
		var b strings.Builder
		for i := 0; i < 6; i++ {
			b.WriteByte(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
		}
		code := b.String()
		s.mu.RLock()
		_, exists := s.rooms[code]
		s.mu.RUnlock()
		if !exists {
			return code
		}
	}
}

// CreateRoom creates and registers a new room in the Waiting state.
func (s *Store) CreateRoom(code string, roundDuration, maxPlayers int, hostId string) *Room {
	now := time.Now()
	r := &Room{
		Id:            code,
		Code:          code,
		HostId:        hostId,
		Players:       make(map[string]*Player),
		RoundNumber:   0,
		MaxRounds:     DefaultMaxRounds,
		CycleNumber:   1,
		RoundDuration: roundDuration,
		GameState:     StateWaiting,
		Winners:       make(map[string]bool),
		MaxPlayers:    maxPlayers,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.mu.Lock()
	s.rooms[code] = r
	s.mu.Unlock()
	return r
}

// GetRoom returns a deep-copied snapshot of the room, or nil if absent.
func (s *Store) GetRoom(code string) *Room {
	s.mu.RLock()
	r, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.snapshotLocked()
}

// MutateRoom is the only path that modifies a room. fn runs under the
// room's exclusive critical section; its return value is propagated.
func (s *Store) MutateRoom(code string, fn func(*Room) error) error {
	s.mu.RLock()
	r, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok {
		return ErrRoomNotFound
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return fn(r)
}

// DeleteRoom removes a room from the registry. Safe to call even if the
// room no longer exists.
func (s *Store) DeleteRoom(code string) {
	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()
}

// AddPlayer inserts player into the named room, enforcing the capacity
// and case-sensitive-duplicate-username invariants from the room state
// store contract.
func (s *Store) AddPlayer(code string, p *Player) error {
	return s.MutateRoom(code, func(r *Room) error {
		if len(r.Players) >= r.MaxPlayers {
			return ErrRoomFull
		}
		for _, existing := range r.Players {
			if existing.Username == p.Username {
				return ErrUsernameTaken
			}
		}
		r.joinSeq++
		p.JoinSeq = r.joinSeq
		if p.JoinedAt.IsZero() {
			p.JoinedAt = time.Now()
		}
		r.Players[p.Id] = p
		r.UpdatedAt = time.Now()
		return nil
	})
}

// FindPlayerByUsername returns the id of the player in code whose username
// matches exactly, or ErrPlayerNotFound. Used to attach a websocket
// connection to the player record an earlier HTTP join already created.
func (s *Store) FindPlayerByUsername(code, username string) (string, error) {
	room := s.GetRoom(code)
	if room == nil {
		return "", ErrRoomNotFound
	}
	for id, p := range room.Players {
		if p.Username == username {
			return id, nil
		}
	}
	return "", ErrPlayerNotFound
}

// MarkConnected flips a player's is_connected flag, used when a websocket
// attaches to (or detaches from) an already-existing player record. Role
// state (drawing/guessing/spectator) is left to the state machine; only a
// disconnect forces PlayerDisconnected.
func (s *Store) MarkConnected(code, playerId string, connected bool) error {
	return s.MutateRoom(code, func(r *Room) error {
		p, ok := r.Players[playerId]
		if !ok {
			return ErrPlayerNotFound
		}
		p.IsConnected = connected
		if !connected {
			p.State = PlayerDisconnected
		}
		r.UpdatedAt = time.Now()
		return nil
	})
}

// RemovePlayer deletes a player from a room and reports whether the room
// is now empty, matching the state-store contract's remove_player shape.
func (s *Store) RemovePlayer(code, playerId string) (*Player, bool, error) {
	var removed *Player
	var empty bool
	err := s.MutateRoom(code, func(r *Room) error {
		p, ok := r.Players[playerId]
		if !ok {
			return ErrPlayerNotFound
		}
		cp := *p
		removed = &cp
		delete(r.Players, playerId)
		delete(r.Winners, playerId)
		r.UpdatedAt = time.Now()
		empty = len(r.Players) == 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if empty {
		s.DeleteRoom(code)
	}
	return removed, empty, nil
}

// TransferHost assigns the earliest-joined remaining player as host and
// returns their id. Deterministic by design (see DESIGN.md Open
// Questions) rather than the arbitrary map-order pick some references use.
func (s *Store) TransferHost(code string) (string, error) {
	var newHost string
	err := s.MutateRoom(code, func(r *Room) error {
		order := r.orderedPlayerIds()
		if len(order) == 0 {
			return ErrPlayerNotFound
		}
		newHost = order[0]
		r.HostId = newHost
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		log.Printf("[store] TransferHost(%s): %v", code, err)
		return "", err
	}
	return newHost, nil
}
