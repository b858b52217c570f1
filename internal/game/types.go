// Package game implements the room runtime: the per-room state machine,
// drawer rotation, guess adjudication, visibility filtering and the round
// timer lifecycle.
package game

import (
	"sync"
	"time"
)

// GameState is the lifecycle stage of a room.
type GameState string

const (
	StateWaiting  GameState = "waiting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

// PlayerState is a player's role within the current round.
type PlayerState string

const (
	PlayerSpectator    PlayerState = "spectator"
	PlayerDrawing      PlayerState = "drawing"
	PlayerGuessing     PlayerState = "guessing"
	PlayerDisconnected PlayerState = "disconnected"
)

// BrushSize is the categorical brush size carried on a stroke.
type BrushSize string

const (
	BrushSmall  BrushSize = "small"
	BrushMedium BrushSize = "medium"
	BrushLarge  BrushSize = "large"
)

const (
	DefaultMaxPlayers   = 8
	MinPlayersToStart   = 2
	DefaultMaxRounds    = 3
	MinMaxRounds        = 1
	MaxMaxRounds        = 5
	ChatHistoryLimit    = 10
	DefaultRoundSeconds = 80
)

// Player is one participant in a room.
type Player struct {
	Id            string
	Username      string
	Score         int
	State         PlayerState
	IsConnected   bool
	JoinedAt      time.Time
	JoinSeq       int64 // monotonic tie-breaker, rotation order is (JoinedAt, JoinSeq)
	ArtistStreak  int
}

// PublicPlayer is the wire-safe projection of a Player.
type PublicPlayer struct {
	Id           string      `json:"id"`
	Username     string      `json:"username"`
	Score        int         `json:"score"`
	State        PlayerState `json:"state"`
	IsConnected  bool        `json:"is_connected"`
	JoinedAt     time.Time   `json:"joined_at"`
	ArtistStreak int         `json:"artist_streak"`
}

func (p *Player) ToPublic() PublicPlayer {
	return PublicPlayer{
		Id:           p.Id,
		Username:     p.Username,
		Score:        p.Score,
		State:        p.State,
		IsConnected:  p.IsConnected,
		JoinedAt:     p.JoinedAt,
		ArtistStreak: p.ArtistStreak,
	}
}

// DrawStroke is a single recorded point on a drawing path.
type DrawStroke struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	ColorHex  string    `json:"color"`
	Alpha     float64   `json:"alpha"`
	IsEraser  bool      `json:"is_eraser"`
	BrushSize BrushSize `json:"brush_size"`
	BrushPx   int       `json:"brush_px"`
	Timestamp int64     `json:"timestamp"`
}

// DrawPath is an ordered sequence of strokes authored by one player.
type DrawPath struct {
	Id        string       `json:"id"`
	PlayerId  string       `json:"player_id"`
	Color     string       `json:"color"` // named palette value
	ColorHex  string       `json:"color_hex"`
	BrushSize BrushSize    `json:"brush_size"`
	Strokes   []DrawStroke `json:"strokes"`
	CreatedAt time.Time    `json:"created_at"`
}

// ChatMessage is one line of room chat, public or winners-only.
type ChatMessage struct {
	Id            string    `json:"id"`
	PlayerId      string    `json:"player_id"`
	Username      string    `json:"username"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	IsWinnersOnly bool      `json:"is_winners_only"`
}

// Guess records one correct-guess event for scoring.
type Guess struct {
	PlayerId       string    `json:"player_id"`
	Username       string    `json:"username"`
	Word           string    `json:"word"`
	Timestamp      time.Time `json:"timestamp"`
	TimeRemaining  int       `json:"time_remaining"`
	NormalizedTime float64   `json:"normalized_time"`
}

// RoundScores is the deterministic scoring result for one round.
type RoundScores struct {
	RoundNumber      int            `json:"round_number"`
	Word             string         `json:"word"`
	GuesserScores    map[string]int `json:"guesser_scores"`
	ArtistScore      int            `json:"artist_score"`
	ArtistStreak     int            `json:"artist_streak"`
	RoundDuration    int            `json:"round_duration"`
	CorrectGuesses   []Guess        `json:"correct_guesses"`
	MedianGuessTime  float64        `json:"median_guess_time"`
	FractionGuessed  float64        `json:"fraction_guessed"`
}

// Room is one game session. Mu serializes all mutation; readers should
// only ever see Store.GetRoom's deep copy, never the live struct.
type Room struct {
	Mu sync.Mutex

	Id            string
	Code          string
	HostId        string
	Players       map[string]*Player
	CurrentDrawer string // empty string means "none"
	Word          string // empty string means "none"
	RoundNumber   int
	CycleNumber   int
	MaxRounds     int
	RoundDuration int // seconds

	GameState GameState

	RoundStartTime time.Time
	RoundEndTime   time.Time

	DrawingPaths        []DrawPath
	ChatMessages        []ChatMessage
	CurrentRoundGuesses []Guess
	Winners             map[string]bool

	MaxPlayers int
	CreatedAt  time.Time
	UpdatedAt  time.Time

	joinSeq int64 // next join sequence number to assign

	timerGen uint64 // incremented on every reschedule, invalidates stale wake-ups (see timer.go)
}

// PublicRoom is the wire-safe, possibly-redacted projection of a Room.
type PublicRoom struct {
	Id                  string                 `json:"id"`
	Code                string                 `json:"code"`
	HostId              string                 `json:"host_id"`
	Players             map[string]PublicPlayer `json:"players"`
	CurrentDrawer       string                 `json:"current_drawer,omitempty"`
	Word                *string                `json:"word"`
	RoundNumber         int                    `json:"round_number"`
	CycleNumber         int                    `json:"cycle_number"`
	MaxRounds           int                    `json:"max_rounds"`
	RoundDuration       int                    `json:"round_duration"`
	GameState           GameState              `json:"game_state"`
	RoundStartTime      time.Time              `json:"round_start_time"`
	RoundEndTime        time.Time              `json:"round_end_time"`
	DrawingPaths        []DrawPath             `json:"drawing_paths"`
	ChatMessages        []ChatMessage          `json:"chat_messages"`
	CurrentRoundGuesses []Guess                `json:"current_round_guesses"`
	Winners             []string               `json:"winners"`
	MaxPlayers          int                    `json:"max_players"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// snapshotLocked deep-copies the room for safe use outside the lock.
// Caller must hold r.Mu.
func (r *Room) snapshotLocked() *Room {
	cp := &Room{
		Id:            r.Id,
		Code:          r.Code,
		HostId:        r.HostId,
		Players:       make(map[string]*Player, len(r.Players)),
		CurrentDrawer: r.CurrentDrawer,
		Word:          r.Word,
		RoundNumber:   r.RoundNumber,
		CycleNumber:   r.CycleNumber,
		MaxRounds:     r.MaxRounds,
		RoundDuration: r.RoundDuration,
		GameState:     r.GameState,
		RoundStartTime: r.RoundStartTime,
		RoundEndTime:   r.RoundEndTime,
		MaxPlayers:     r.MaxPlayers,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Winners:        make(map[string]bool, len(r.Winners)),
		joinSeq:        r.joinSeq,
		timerGen:       r.timerGen,
	}
	for id, p := range r.Players {
		cpp := *p
		cp.Players[id] = &cpp
	}
	for id, w := range r.Winners {
		cp.Winners[id] = w
	}
	cp.DrawingPaths = append([]DrawPath(nil), r.DrawingPaths...)
	cp.ChatMessages = append([]ChatMessage(nil), r.ChatMessages...)
	cp.CurrentRoundGuesses = append([]Guess(nil), r.CurrentRoundGuesses...)
	return cp
}

// ToPublic renders a (snapshot) room for the wire, full-visibility view.
func (r *Room) ToPublic() PublicRoom {
	players := make(map[string]PublicPlayer, len(r.Players))
	for id, p := range r.Players {
		players[id] = p.ToPublic()
	}
	winners := make([]string, 0, len(r.Winners))
	for id := range r.Winners {
		winners = append(winners, id)
	}
	var word *string
	if r.Word != "" {
		w := r.Word
		word = &w
	}
	return PublicRoom{
		Id:                  r.Id,
		Code:                r.Code,
		HostId:              r.HostId,
		Players:             players,
		CurrentDrawer:       r.CurrentDrawer,
		Word:                word,
		RoundNumber:         r.RoundNumber,
		CycleNumber:         r.CycleNumber,
		MaxRounds:           r.MaxRounds,
		RoundDuration:       r.RoundDuration,
		GameState:           r.GameState,
		RoundStartTime:      r.RoundStartTime,
		RoundEndTime:        r.RoundEndTime,
		DrawingPaths:        r.DrawingPaths,
		ChatMessages:        r.ChatMessages,
		CurrentRoundGuesses: r.CurrentRoundGuesses,
		Winners:             winners,
		MaxPlayers:          r.MaxPlayers,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// orderedPlayerIds returns player ids ordered by ascending (JoinedAt, JoinSeq).
func (r *Room) orderedPlayerIds() []string {
	type entry struct {
		id   string
		t    time.Time
		seq  int64
	}
	entries := make([]entry, 0, len(r.Players))
	for id, p := range r.Players {
		entries = append(entries, entry{id, p.JoinedAt, p.JoinSeq})
	}
	for i := 1; i < len(entries); i++ {
		j := i
		for j > 0 {
			a, b := entries[j-1], entries[j]
			less := a.t.After(b.t) || (a.t.Equal(b.t) && a.seq > b.seq)
			if !less {
				break
			}
			entries[j-1], entries[j] = entries[j], entries[j-1]
			j--
		}
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// connectedPlayerCount counts players still marked connected.
func (r *Room) connectedPlayerCount() int {
	n := 0
	for _, p := range r.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

// isWinner reports whether playerId is the current drawer or in winners.
func (r *Room) isWinner(playerId string) bool {
	if r.CurrentDrawer != "" && r.CurrentDrawer == playerId {
		return true
	}
	return r.Winners[playerId]
}
