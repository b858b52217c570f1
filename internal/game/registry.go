package game

import "sync"

// Connection is one player's outbound channel plus room membership, the
// unit the connection registry indexes fan-out by.
type Connection struct {
	PlayerId string
	RoomCode string
	Outbound chan []byte
}

// Registry is the connection registry: one outbound channel per player,
// looked up by player id or enumerated by room code for broadcast.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Connection)}
}

// AddConnection registers a player's outbound channel. The channel is
// buffered by the caller (transport layer) so a slow consumer can
// accumulate a bounded backlog without blocking the room's critical
// section.
func (reg *Registry) AddConnection(playerId, roomCode string, outbound chan []byte) {
	reg.mu.Lock()
	reg.conns[playerId] = &Connection{PlayerId: playerId, RoomCode: roomCode, Outbound: outbound}
	reg.mu.Unlock()
}

// RemoveConnection drops the registry entry for playerId, if present.
func (reg *Registry) RemoveConnection(playerId string) {
	reg.mu.Lock()
	delete(reg.conns, playerId)
	reg.mu.Unlock()
}

// ConnectionsInRoom returns a snapshot slice of connections for roomCode,
// safe to iterate and send on outside of any lock.
func (reg *Registry) ConnectionsInRoom(roomCode string) []*Connection {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var out []*Connection
	for _, c := range reg.conns {
		if c.RoomCode == roomCode {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the connection for a single player, if registered.
func (reg *Registry) Get(playerId string) (*Connection, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.conns[playerId]
	return c, ok
}
