package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(NewStore(), NewRegistry())
}

func joinPlayer(t *testing.T, e *Engine, code, username string) *Player {
	t.Helper()
	p, err := e.Join(code, username, make(chan []byte, 32))
	require.NoError(t, err)
	return p
}

func TestStartGame_RequiresTwoPlayers(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))

	require.NoError(t, e.StartGame(code, host.Id))
	room := e.Store.GetRoom(code)
	assert.Equal(t, StateWaiting, room.GameState, "one player is below the threshold to start")

	joinPlayer(t, e, code, "second")
	require.NoError(t, e.StartGame(code, host.Id))
	room = e.Store.GetRoom(code)
	assert.Equal(t, StatePlaying, room.GameState)
	assert.NotEmpty(t, room.CurrentDrawer)
	assert.Equal(t, 1, room.RoundNumber)
	assert.Equal(t, 1, room.CycleNumber)
}

func TestWordSelected_OnlyDrawerCanSetWord(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	other := joinPlayer(t, e, code, "other")
	require.NoError(t, e.StartGame(code, host.Id))

	room := e.Store.GetRoom(code)
	drawerId := room.CurrentDrawer
	nonDrawerId := host.Id
	if drawerId == host.Id {
		nonDrawerId = other.Id
	}

	e.WordSelected(code, nonDrawerId, "banana")
	room = e.Store.GetRoom(code)
	assert.Empty(t, room.Word, "a non-drawer's WordSelected must be a silent no-op")

	e.WordSelected(code, drawerId, "banana")
	room = e.Store.GetRoom(code)
	assert.Equal(t, "banana", room.Word)
	assert.False(t, room.RoundEndTime.IsZero())
}

func TestRoundEnd_RotatesDrawerAndAdvancesRound(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	joinPlayer(t, e, code, "second")
	require.NoError(t, e.StartGame(code, host.Id))

	before := e.Store.GetRoom(code)
	firstDrawer := before.CurrentDrawer

	require.NoError(t, e.RoundEnd(code, "explicit_end_round"))

	after := e.Store.GetRoom(code)
	assert.NotEqual(t, firstDrawer, after.CurrentDrawer, "drawer should rotate to the other player")
	assert.Equal(t, 2, after.RoundNumber)
	assert.Equal(t, 1, after.CycleNumber)
	assert.Equal(t, StatePlaying, after.GameState)
}

func TestRoundEnd_FinishesGameAfterMaxRounds(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	joinPlayer(t, e, code, "second")
	require.NoError(t, e.UpdateSettings(code, host.Id, 1))
	require.NoError(t, e.StartGame(code, host.Id))

	for i := 0; i < 2; i++ {
		room := e.Store.GetRoom(code)
		if room.GameState != StatePlaying {
			break
		}
		require.NoError(t, e.RoundEnd(code, "explicit_end_round"))
	}

	room := e.Store.GetRoom(code)
	assert.Equal(t, StateFinished, room.GameState)
}

func TestUpdateSettings_HostOnly(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	other := joinPlayer(t, e, code, "other")

	err := e.UpdateSettings(code, other.Id, 5)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, e.UpdateSettings(code, host.Id, 99))
	room := e.Store.GetRoom(code)
	assert.Equal(t, MaxMaxRounds, room.MaxRounds, "max_rounds must clamp to the upper bound")
}

func TestHandleEndRound_HostOrDrawerOnly(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	other := joinPlayer(t, e, code, "other")
	require.NoError(t, e.StartGame(code, host.Id))

	room := e.Store.GetRoom(code)
	bystander := host.Id
	if room.CurrentDrawer == host.Id {
		bystander = other.Id
	}

	err := e.HandleEndRound(code, bystander)
	if bystander != room.HostId && bystander != room.CurrentDrawer {
		assert.ErrorIs(t, err, ErrNotAuthorized)
	} else {
		assert.NoError(t, err)
	}
}
