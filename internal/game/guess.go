package game

import (
	"strings"
	"time"

	"github.com/scythe504/skribbl-roomrt/internal/protocol"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HandleChat classifies inbound chat text from playerId in room code
// into one of three paths:
//  1. winners-only chat, if the author is the artist or already a winner
//  2. a correct guess, if a word is set and the text matches it
//  3. regular public chat
//
// The chat line itself is never broadcast on a correct guess — only a
// CorrectGuess event — so the word is never leaked via chat history.
func (e *Engine) HandleChat(code, playerId, text string) error {
	room := e.Store.GetRoom(code)
	if room == nil {
		return ErrRoomNotFound
	}
	player, ok := room.Players[playerId]
	if !ok {
		return ErrPlayerNotFound
	}

	if room.isWinner(playerId) {
		return e.appendChat(code, player, text, true)
	}

	if room.GameState == StatePlaying && room.Word != "" && normalize(text) == normalize(room.Word) {
		return e.handleCorrectGuess(code, playerId)
	}

	return e.appendChat(code, player, text, false)
}

func (e *Engine) appendChat(code string, player *Player, text string, winnersOnly bool) error {
	msg := ChatMessage{
		Id:            newPlayerId(),
		PlayerId:      player.Id,
		Username:      player.Username,
		Message:       text,
		Timestamp:     time.Now(),
		IsWinnersOnly: winnersOnly,
	}
	err := e.Store.MutateRoom(code, func(r *Room) error {
		r.ChatMessages = append(r.ChatMessages, msg)
		if len(r.ChatMessages) > ChatHistoryLimit {
			r.ChatMessages = r.ChatMessages[len(r.ChatMessages)-ChatHistoryLimit:]
		}
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return err
	}
	if winnersOnly {
		room := e.Store.GetRoom(code)
		e.Broadcast.BroadcastToWinners(room, protocol.TypeChatMessage, struct {
			Message ChatMessage `json:"message"`
		}{Message: msg})
	} else {
		room := e.Store.GetRoom(code)
		e.Broadcast.BroadcastRoomStateFiltered(room)
		e.Broadcast.BroadcastToRoom(code, protocol.TypeChatMessage, struct {
			Message ChatMessage `json:"message"`
		}{Message: msg})
	}
	return nil
}

// handleCorrectGuess is idempotent on repeat: a player already present in
// current_round_guesses is a silent no-op.
func (e *Engine) handleCorrectGuess(code, playerId string) error {
	var (
		triggerRoundEnd bool
		player          PublicPlayer
		word            string
		already         bool
	)
	err := e.Store.MutateRoom(code, func(r *Room) error {
		for _, g := range r.CurrentRoundGuesses {
			if g.PlayerId == playerId {
				already = true
				return nil
			}
		}
		p, ok := r.Players[playerId]
		if !ok {
			return ErrPlayerNotFound
		}
		timeRemaining := int(r.RoundEndTime.Sub(time.Now()).Seconds())
		if timeRemaining < 0 {
			timeRemaining = 0
		}
		normalizedTime := 0.0
		if r.RoundDuration > 0 {
			normalizedTime = float64(timeRemaining) / float64(r.RoundDuration)
		}
		if normalizedTime < 0 {
			normalizedTime = 0
		}
		if normalizedTime > 1 {
			normalizedTime = 1
		}
		r.CurrentRoundGuesses = append(r.CurrentRoundGuesses, Guess{
			PlayerId:       playerId,
			Username:       p.Username,
			Word:           r.Word,
			Timestamp:      time.Now(),
			TimeRemaining:  timeRemaining,
			NormalizedTime: normalizedTime,
		})
		if r.Winners == nil {
			r.Winners = map[string]bool{}
		}
		r.Winners[playerId] = true
		word = r.Word
		player = p.ToPublic()
		r.UpdatedAt = time.Now()

		potential := 0
		for id := range r.Players {
			if id != r.CurrentDrawer {
				potential++
			}
		}
		if len(r.CurrentRoundGuesses) >= potential {
			triggerRoundEnd = true
		}
		return nil
	})
	if err != nil || already {
		return err
	}

	e.Broadcast.BroadcastToRoom(code, protocol.TypeCorrectGuess, struct {
		Player PublicPlayer `json:"player"`
		Word   string       `json:"word"`
	}{Player: player, Word: word})

	room := e.Store.GetRoom(code)
	if room != nil {
		e.Broadcast.BroadcastRoomStateFiltered(room)
	}

	if triggerRoundEnd {
		return e.RoundEnd(code, "all_guessed")
	}
	return nil
}
