package game

// Engine wires the state store, connection registry and broadcaster
// together and exposes the room runtime's operations. It holds no room
// state itself — everything lives in Store's rooms, mutated through
// Store.MutateRoom.
type Engine struct {
	Store     *Store
	Registry  *Registry
	Broadcast *Broadcaster
}

func NewEngine(store *Store, registry *Registry) *Engine {
	return &Engine{
		Store:     store,
		Registry:  registry,
		Broadcast: NewBroadcaster(registry),
	}
}

// Join creates a brand-new player record, adds it to the room, registers
// its outbound channel, and announces it to the rest of the room. Used
// directly by tests that need a player without going through the HTTP
// façade; the websocket upgrade itself never calls this (see
// AttachConnection) since spec.md's lifecycle creates players on HTTP
// join, not on socket connect.
func (e *Engine) Join(roomCode, username string, outbound chan []byte) (*Player, error) {
	p := &Player{
		Id:          newPlayerId(),
		Username:    username,
		State:       PlayerSpectator,
		IsConnected: true,
	}
	if err := e.Store.AddPlayer(roomCode, p); err != nil {
		return nil, err
	}
	e.Registry.AddConnection(p.Id, roomCode, outbound)

	room := e.Store.GetRoom(roomCode)
	e.Broadcast.BroadcastToRoomExcluding(roomCode, p.Id, "PlayerJoined", struct {
		RoomCode string       `json:"room_code"`
		Player   PublicPlayer `json:"player"`
	}{RoomCode: roomCode, Player: p.ToPublic()})
	e.Broadcast.SendTo(p.Id, "GameStateUpdate", struct {
		Room PublicRoom `json:"room"`
	}{Room: FilteredView(room, p.Id)})
	return p, nil
}

// AttachConnection is what the websocket upgrade actually uses: it looks
// up the player record an earlier POST /createRoom or /joinRoom already
// created (matched by username, same exact-match rule AddPlayer enforces
// against duplicates), registers the outbound channel against that
// player's id, and marks it connected. It never creates a player — a
// username with no matching HTTP-created record is ErrPlayerNotFound.
func (e *Engine) AttachConnection(roomCode, username string, outbound chan []byte) (*Player, error) {
	playerId, err := e.Store.FindPlayerByUsername(roomCode, username)
	if err != nil {
		return nil, err
	}
	if err := e.Store.MarkConnected(roomCode, playerId, true); err != nil {
		return nil, err
	}
	e.Registry.AddConnection(playerId, roomCode, outbound)

	room := e.Store.GetRoom(roomCode)
	p, ok := room.Players[playerId]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	e.Broadcast.BroadcastToRoomExcluding(roomCode, playerId, "PlayerJoined", struct {
		RoomCode string       `json:"room_code"`
		Player   PublicPlayer `json:"player"`
	}{RoomCode: roomCode, Player: p.ToPublic()})
	e.Broadcast.SendTo(playerId, "GameStateUpdate", struct {
		Room PublicRoom `json:"room"`
	}{Room: FilteredView(room, playerId)})
	return p, nil
}

// Leave removes a player from a room, transfers host if needed, and
// broadcasts in the order spec.md's scenario 5 requires: HostChanged
// first, then PlayerLeft.
func (e *Engine) Leave(roomCode, playerId string) error {
	room := e.Store.GetRoom(roomCode)
	if room == nil {
		return ErrRoomNotFound
	}
	wasHost := room.HostId == playerId

	removed, empty, err := e.Store.RemovePlayer(roomCode, playerId)
	if err != nil {
		return err
	}
	e.Registry.RemoveConnection(playerId)

	if empty {
		return nil
	}

	if wasHost {
		newHostId, err := e.Store.TransferHost(roomCode)
		if err == nil {
			if updated := e.Store.GetRoom(roomCode); updated != nil {
				if newHost, ok := updated.Players[newHostId]; ok {
					e.Broadcast.BroadcastToRoom(roomCode, "HostChanged", struct {
						NewHost PublicPlayer `json:"new_host"`
					}{NewHost: newHost.ToPublic()})
				}
			}
		}
	}

	disconnected := *removed
	disconnected.State = PlayerDisconnected
	disconnected.IsConnected = false
	e.Broadcast.BroadcastToRoom(roomCode, "PlayerLeft", struct {
		RoomCode string       `json:"room_code"`
		Player   PublicPlayer `json:"player"`
	}{RoomCode: roomCode, Player: disconnected.ToPublic()})

	// A drawer or active guesser leaving mid-round must not stall the
	// round indefinitely: if everyone remaining has now guessed, end it.
	if updated := e.Store.GetRoom(roomCode); updated != nil && updated.GameState == StatePlaying {
		if updated.CurrentDrawer == playerId {
			e.RoundEnd(roomCode, "drawer_left")
		} else if e.allNonArtistsGuessed(updated) {
			e.RoundEnd(roomCode, "all_guessed")
		} else {
			e.Broadcast.BroadcastRoomStateFiltered(updated)
		}
	}
	return nil
}

func (e *Engine) allNonArtistsGuessed(room *Room) bool {
	potential := 0
	for id := range room.Players {
		if id != room.CurrentDrawer {
			potential++
		}
	}
	return potential > 0 && len(room.CurrentRoundGuesses) >= potential
}
