package game

import (
	"log"
	"time"

	"github.com/scythe504/skribbl-roomrt/internal/protocol"
	"github.com/scythe504/skribbl-roomrt/internal/scoring"
)

// StartGame transitions Waiting -> Playing. Requires at least two
// players; the drawer is the earliest-joined player. No word is chosen
// and no timer starts here — the next WordSelected starts one.
func (e *Engine) StartGame(code, requesterId string) error {
	var drawerId string
	err := e.Store.MutateRoom(code, func(r *Room) error {
		if r.GameState != StateWaiting {
			return nil // precondition failed: silently ignored, idempotent
		}
		if len(r.Players) < MinPlayersToStart {
			return nil
		}
		order := r.orderedPlayerIds()
		drawerId = order[0]
		r.CurrentDrawer = drawerId
		r.RoundNumber = 1
		r.CycleNumber = 1
		r.Word = ""
		r.DrawingPaths = nil
		r.CurrentRoundGuesses = nil
		r.Winners = map[string]bool{drawerId: true}
		r.GameState = StatePlaying
		r.UpdatedAt = time.Now()
		if p, ok := r.Players[drawerId]; ok {
			p.State = PlayerDrawing
		}
		for id, p := range r.Players {
			if id != drawerId {
				p.State = PlayerGuessing
			}
		}
		return nil
	})
	if err != nil || drawerId == "" {
		return err
	}
	room := e.Store.GetRoom(code)
	if drawer, ok := room.Players[drawerId]; ok {
		e.Broadcast.BroadcastToRoom(code, protocol.TypeGameStarted, struct {
			RoomCode string       `json:"room_code"`
			Drawer   PublicPlayer `json:"drawer"`
		}{RoomCode: code, Drawer: drawer.ToPublic()})
	}
	e.Broadcast.BroadcastRoomStateFiltered(room)
	return nil
}

// WordSelected sets the round's word and schedules the round deadline.
// Preconditions (Playing, requester is drawer, no word chosen yet) are
// enforced idempotently: a mismatch is a silent no-op, never an error.
func (e *Engine) WordSelected(code, requesterId, word string) {
	var scheduled bool
	err := e.Store.MutateRoom(code, func(r *Room) error {
		if r.GameState != StatePlaying || r.CurrentDrawer != requesterId || r.Word != "" || word == "" {
			return nil
		}
		r.Word = word
		r.RoundStartTime = time.Now()
		r.RoundEndTime = r.RoundStartTime.Add(time.Duration(r.RoundDuration) * time.Second)
		r.timerGen++
		scheduled = true
		return nil
	})
	if err != nil || !scheduled {
		return
	}
	room := e.Store.GetRoom(code)
	e.Broadcast.BroadcastWordSelected(room)
	e.Broadcast.BroadcastRoomStateFiltered(room)
	e.scheduleRoundTimer(code, requesterId, word)
}

// UpdateSettings clamps max_rounds to [1,5] and assigns it. Host-only.
func (e *Engine) UpdateSettings(code, requesterId string, maxRounds int) error {
	return e.Store.MutateRoom(code, func(r *Room) error {
		if r.HostId != requesterId {
			return ErrNotAuthorized
		}
		if maxRounds < MinMaxRounds {
			maxRounds = MinMaxRounds
		}
		if maxRounds > MaxMaxRounds {
			maxRounds = MaxMaxRounds
		}
		r.MaxRounds = maxRounds
		r.UpdatedAt = time.Now()
		return nil
	})
}

// HandleEndRound processes an explicit client-requested round end.
// Hardened per spec.md §9: only the host or the current drawer may do
// this (the reference implementation allows anyone, which spec.md flags
// as worth restricting).
func (e *Engine) HandleEndRound(code, requesterId string) error {
	room := e.Store.GetRoom(code)
	if room == nil {
		return ErrRoomNotFound
	}
	if requesterId != room.HostId && requesterId != room.CurrentDrawer {
		return ErrNotAuthorized
	}
	return e.RoundEnd(code, "explicit_end_round")
}

// RoundEnd scores the round, rotates the drawer, advances the cycle
// counter, and either announces the next drawer or ends the game.
func (e *Engine) RoundEnd(code, reason string) error {
	type outcome struct {
		roundScores   scoring.RoundScores
		word          string
		finishedGame  bool
		finalScores   map[string]int
		nextDrawerId  string
		nextDrawer    PublicPlayer
		roundNumber   int
	}
	var out outcome

	err := e.Store.MutateRoom(code, func(r *Room) error {
		if r.GameState != StatePlaying {
			return nil
		}
		potentialGuessers := 0
		for id := range r.Players {
			if id != r.CurrentDrawer {
				potentialGuessers++
			}
		}
		var drawerStreak int
		if drawer, ok := r.Players[r.CurrentDrawer]; ok {
			drawerStreak = drawer.ArtistStreak
		}
		guesses := make([]scoring.Guess, len(r.CurrentRoundGuesses))
		for i, g := range r.CurrentRoundGuesses {
			guesses[i] = scoring.Guess{
				PlayerId:       g.PlayerId,
				Timestamp:      g.Timestamp,
				TimeRemaining:  g.TimeRemaining,
				NormalizedTime: g.NormalizedTime,
			}
		}
		result := scoring.ScoreRound(guesses, potentialGuessers, drawerStreak)
		for id, score := range result.GuesserScores {
			if p, ok := r.Players[id]; ok {
				p.Score += score
			}
		}
		if drawer, ok := r.Players[r.CurrentDrawer]; ok {
			drawer.Score += result.ArtistScore
			should := scoring.ShouldIncrementStreak(guesses, r.RoundDuration, potentialGuessers)
			drawer.ArtistStreak = scoring.UpdateStreak(drawer.ArtistStreak, should)
		}
		out.roundScores = result
		out.word = r.Word
		out.roundNumber = r.RoundNumber

		order := r.orderedPlayerIds()
		n := len(order)
		if n == 0 {
			r.GameState = StateFinished
			out.finishedGame = true
			out.finalScores = finalScoresLocked(r)
			return nil
		}
		currentIdx := indexOf(order, r.CurrentDrawer)
		nextIdx := (currentIdx + 1) % n
		if nextIdx == 0 {
			r.CycleNumber++
			r.RoundNumber = 1
		} else {
			r.RoundNumber++
		}
		// Assertion-only safety net: the nominal path above should never
		// let round_number exceed n. If it ever does, this corrects state
		// rather than leaving it inconsistent, but it is not how cycles
		// normally advance.
		if r.RoundNumber > n {
			log.Printf("[room %s] round_number %d exceeded player count %d after rotation, forcing new cycle", code, r.RoundNumber, n)
			r.CycleNumber++
			r.RoundNumber = 1
		}

		r.Word = ""
		r.DrawingPaths = nil
		r.CurrentRoundGuesses = nil

		if r.CycleNumber > r.MaxRounds {
			r.GameState = StateFinished
			r.CurrentDrawer = ""
			r.Winners = map[string]bool{}
			out.finishedGame = true
			out.finalScores = finalScoresLocked(r)
			return nil
		}

		nextDrawerId := order[nextIdx]
		r.CurrentDrawer = nextDrawerId
		r.Winners = map[string]bool{nextDrawerId: true}
		if p, ok := r.Players[nextDrawerId]; ok {
			p.State = PlayerDrawing
			out.nextDrawer = p.ToPublic()
		}
		for id, p := range r.Players {
			if id != nextDrawerId {
				p.State = PlayerGuessing
			}
		}
		out.nextDrawerId = nextDrawerId
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return err
	}

	scoresOut := make(map[string]int, len(out.roundScores.GuesserScores))
	for id, s := range out.roundScores.GuesserScores {
		scoresOut[id] = s
	}
	e.Broadcast.BroadcastToRoom(code, protocol.TypeRoundEnd, struct {
		Word   string         `json:"word"`
		Scores map[string]int `json:"scores"`
	}{Word: out.word, Scores: scoresOut})

	room := e.Store.GetRoom(code)
	if room == nil {
		return nil
	}
	if out.finishedGame {
		e.Broadcast.BroadcastToRoom(code, protocol.TypeGameEnded, struct {
			FinalScores map[string]int `json:"final_scores"`
		}{FinalScores: out.finalScores})
	} else {
		e.Broadcast.BroadcastToRoom(code, protocol.TypeRoundStart, struct {
			RoomCode string       `json:"room_code"`
			Drawer   PublicPlayer `json:"drawer"`
		}{RoomCode: code, Drawer: out.nextDrawer})
	}
	e.Broadcast.BroadcastRoomStateFiltered(room)
	return nil
}

func finalScoresLocked(r *Room) map[string]int {
	scores := make(map[string]int, len(r.Players))
	for id, p := range r.Players {
		scores[id] = p.Score
	}
	return scores
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
