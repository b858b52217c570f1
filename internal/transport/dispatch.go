package transport

import (
	"encoding/json"
	"log"

	"github.com/scythe504/skribbl-roomrt/internal/game"
	"github.com/scythe504/skribbl-roomrt/internal/protocol"
)

// dispatch decodes env.Data into the concrete shape its Type names and
// routes it to the matching room-runtime handler. An unparseable inbound
// frame is already handled by the caller before this is reached.
func dispatch(e *game.Engine, roomCode, playerId string, env protocol.RawEnvelope) {
	switch env.Type {
	case protocol.TypeJoinRoom:
		// no-op: readPump already consumed the JoinRoom that attached this
		// connection's identity before dispatch ever sees a message; a
		// second one from the same connection changes nothing.

	case protocol.TypeLeaveRoom:
		var in protocol.LeaveRoomIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if in.PlayerId != playerId {
			e.Broadcast.SendError(playerId, "not authorized")
			return
		}
		if err := e.Leave(roomCode, playerId); err != nil {
			log.Printf("[dispatch] LeaveRoom: %v", err)
		}

	case protocol.TypeDrawUpdate:
		var in protocol.DrawUpdateIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if err := e.HandleDrawPath(roomCode, playerId, in.Path); err != nil {
			log.Printf("[dispatch] DrawUpdate: %v", err)
		}

	case protocol.TypeDrawStroke:
		var in protocol.DrawStrokeIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if err := e.HandleDrawStroke(roomCode, playerId, in.Stroke); err != nil {
			log.Printf("[dispatch] DrawStroke: %v", err)
		}

	case protocol.TypeChat:
		var in protocol.ChatIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if err := e.HandleChat(roomCode, playerId, in.Message); err != nil {
			log.Printf("[dispatch] Chat: %v", err)
		}

	case protocol.TypeWinnersChat:
		// WinnersChat and Chat share text shape and adjudication:
		// HandleChat already classifies by the sender's winner status, not
		// by which inbound tag carried the text (see guess.go), so this
		// only needs its own decode target to keep WinnersChatIn wired.
		var in protocol.WinnersChatIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if err := e.HandleChat(roomCode, playerId, in.Message); err != nil {
			log.Printf("[dispatch] WinnersChat: %v", err)
		}

	case protocol.TypeGuess:
		var in protocol.GuessIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if err := e.HandleChat(roomCode, playerId, in.Guess); err != nil {
			log.Printf("[dispatch] Guess: %v", err)
		}

	case protocol.TypeStartGame:
		if err := e.StartGame(roomCode, playerId); err != nil {
			e.Broadcast.SendError(playerId, err.Error())
		}

	case protocol.TypeEndRound:
		if err := e.HandleEndRound(roomCode, playerId); err != nil {
			e.Broadcast.SendError(playerId, err.Error())
		}

	case protocol.TypeWordSelected:
		var in protocol.WordSelectedIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		e.WordSelected(roomCode, playerId, in.Word)

	case protocol.TypeUpdateSettings:
		var in protocol.UpdateSettingsIn
		if !decode(e, playerId, env.Data, &in) {
			return
		}
		if err := e.UpdateSettings(roomCode, playerId, in.MaxRounds); err != nil {
			e.Broadcast.SendError(playerId, err.Error())
		}

	default:
		log.Printf("[dispatch] unknown message type %q from player %s", env.Type, playerId)
	}
}

func decode(e *game.Engine, playerId string, raw json.RawMessage, out any) bool {
	if err := json.Unmarshal(raw, out); err != nil {
		e.Broadcast.SendError(playerId, "Invalid message format")
		return false
	}
	return true
}
