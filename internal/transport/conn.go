// Package transport owns the websocket connection lifecycle: upgrading
// HTTP requests, and running the per-connection reader and writer
// goroutines that bridge the wire to the room runtime.
package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scythe504/skribbl-roomrt/internal/game"
	"github.com/scythe504/skribbl-roomrt/internal/protocol"
)

const outboundBacklog = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades an HTTP request to a websocket connection and runs the
// reader/writer goroutine pair until the connection closes. The
// connection starts with no player identity attached; the first inbound
// JoinRoom message attaches it to the player record an earlier HTTP join
// already created (see dispatch.go and Engine.AttachConnection).
type Handler struct {
	Engine *game.Engine
}

func NewHandler(engine *game.Engine) *Handler {
	return &Handler{Engine: engine}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[transport] upgrade failed: %v", err)
		return
	}

	outbound := make(chan []byte, outboundBacklog)
	go h.writePump(conn, outbound)
	h.readPump(conn, outbound)
}

func (h *Handler) writePump(conn *websocket.Conn, outbound chan []byte) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer conn.Close()
	for {
		select {
		case frame, ok := <-outbound:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns the connection's identity: roomCode/playerId are unset
// until a JoinRoom message successfully attaches to an existing player,
// and every other message type is rejected until then.
func (h *Handler) readPump(conn *websocket.Conn, outbound chan []byte) {
	var roomCode, playerId string

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[transport] recovered panic in reader for player %s: %v", playerId, rec)
		}
		conn.Close()
		if playerId == "" {
			return
		}
		if err := h.Engine.Leave(roomCode, playerId); err != nil {
			log.Printf("[transport] leave(%s, %s): %v", roomCode, playerId, err)
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env protocol.RawEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			if playerId != "" {
				h.Engine.Broadcast.SendError(playerId, "Invalid message format")
			}
			continue
		}

		if playerId == "" {
			if env.Type != protocol.TypeJoinRoom {
				continue // silently wait for the JoinRoom that binds identity
			}
			var in protocol.JoinRoomIn
			if err := json.Unmarshal(env.Data, &in); err != nil {
				continue
			}
			player, err := h.Engine.AttachConnection(in.RoomCode, in.Username, outbound)
			if err != nil {
				frame, _ := protocol.Encode(protocol.TypeError, struct {
					Message string `json:"message"`
				}{Message: err.Error()})
				conn.WriteMessage(websocket.TextMessage, frame)
				continue
			}
			roomCode, playerId = in.RoomCode, player.Id
			continue
		}

		dispatch(h.Engine, roomCode, playerId, env)
	}
}
