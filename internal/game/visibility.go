package game

import (
	"log"

	"github.com/scythe504/skribbl-roomrt/internal/protocol"
)

// Broadcaster sends an encoded frame to every connection tracked by a
// Registry, applying the winner/non-winner visibility split spec.md §4.6
// requires. It holds no room state of its own; callers pass a snapshot.
type Broadcaster struct {
	Registry *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{Registry: reg}
}

func (b *Broadcaster) send(c *Connection, frame []byte) {
	select {
	case c.Outbound <- frame:
	default:
		log.Printf("[broadcast] outbound channel full for player %s, dropping connection", c.PlayerId)
		b.Registry.RemoveConnection(c.PlayerId)
		close(c.Outbound)
	}
}

// BroadcastToRoom sends msgType/data to every connection in roomCode.
func (b *Broadcaster) BroadcastToRoom(roomCode, msgType string, data any) {
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		log.Printf("[broadcast] encode %s: %v", msgType, err)
		return
	}
	for _, c := range b.Registry.ConnectionsInRoom(roomCode) {
		b.send(c, frame)
	}
}

// BroadcastToRoomExcluding sends to every connection in roomCode other
// than excludePlayerId.
func (b *Broadcaster) BroadcastToRoomExcluding(roomCode, excludePlayerId, msgType string, data any) {
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		log.Printf("[broadcast] encode %s: %v", msgType, err)
		return
	}
	for _, c := range b.Registry.ConnectionsInRoom(roomCode) {
		if c.PlayerId == excludePlayerId {
			continue
		}
		b.send(c, frame)
	}
}

// SendTo sends a frame to a single player, if connected.
func (b *Broadcaster) SendTo(playerId, msgType string, data any) {
	c, ok := b.Registry.Get(playerId)
	if !ok {
		return
	}
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		log.Printf("[broadcast] encode %s: %v", msgType, err)
		return
	}
	b.send(c, frame)
}

// BroadcastToWinners sends to the artist and every winner in the given
// room snapshot.
func (b *Broadcaster) BroadcastToWinners(room *Room, msgType string, data any) {
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		log.Printf("[broadcast] encode %s: %v", msgType, err)
		return
	}
	for _, c := range b.Registry.ConnectionsInRoom(room.Code) {
		if room.isWinner(c.PlayerId) {
			b.send(c, frame)
		}
	}
}

// BroadcastToNonWinners sends to every connection that is not the artist
// and not in winners.
func (b *Broadcaster) BroadcastToNonWinners(room *Room, msgType string, data any) {
	frame, err := protocol.Encode(msgType, data)
	if err != nil {
		log.Printf("[broadcast] encode %s: %v", msgType, err)
		return
	}
	for _, c := range b.Registry.ConnectionsInRoom(room.Code) {
		if !room.isWinner(c.PlayerId) {
			b.send(c, frame)
		}
	}
}

// FilteredView returns the room view visible to recipientId: winners see
// the room unchanged, non-winners get word redacted and winners-only
// chat stripped. All other fields are unchanged.
func FilteredView(room *Room, recipientId string) PublicRoom {
	view := room.ToPublic()
	if room.isWinner(recipientId) {
		return view
	}
	view.Word = nil
	filtered := make([]ChatMessage, 0, len(view.ChatMessages))
	for _, m := range view.ChatMessages {
		if !m.IsWinnersOnly {
			filtered = append(filtered, m)
		}
	}
	view.ChatMessages = filtered
	return view
}

// BroadcastRoomStateFiltered recomputes and sends a per-recipient
// GameStateUpdate to every connection in the room.
func (b *Broadcaster) BroadcastRoomStateFiltered(room *Room) {
	for _, c := range b.Registry.ConnectionsInRoom(room.Code) {
		view := FilteredView(room, c.PlayerId)
		frame, err := protocol.Encode(protocol.TypeGameStateUpdate, struct {
			Room PublicRoom `json:"room"`
		}{Room: view})
		if err != nil {
			log.Printf("[broadcast] encode %s: %v", protocol.TypeGameStateUpdate, err)
			return
		}
		b.send(c, frame)
	}
}

// BroadcastWordSelected splits the WordSelected announcement: winners get
// the literal word, non-winners get the empty-string sentinel that lets
// the UI start its countdown without learning the word.
func (b *Broadcaster) BroadcastWordSelected(room *Room) {
	b.BroadcastToWinners(room, protocol.TypeOutWordSelected, struct {
		Word string `json:"word"`
	}{Word: room.Word})
	b.BroadcastToNonWinners(room, protocol.TypeOutWordSelected, struct {
		Word string `json:"word"`
	}{Word: ""})
}

// SendError sends an Error frame to a single player.
func (b *Broadcaster) SendError(playerId, message string) {
	b.SendTo(playerId, protocol.TypeError, struct {
		Message string `json:"message"`
	}{Message: message})
}
