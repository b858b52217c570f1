package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilteredView_RedactsWordForNonWinners(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	other := joinPlayer(t, e, code, "other")
	require.NoError(t, e.StartGame(code, host.Id))

	room := e.Store.GetRoom(code)
	e.WordSelected(code, room.CurrentDrawer, "banana")
	room = e.Store.GetRoom(code)

	nonWinnerId := host.Id
	if room.isWinner(host.Id) {
		nonWinnerId = other.Id
	}

	view := FilteredView(room, room.CurrentDrawer)
	require.NotNil(t, view.Word)
	assert.Equal(t, "banana", *view.Word)

	filtered := FilteredView(room, nonWinnerId)
	assert.Nil(t, filtered.Word, "a non-winner must never see the word")
}

func TestFilteredView_StripsWinnersOnlyChat(t *testing.T) {
	e := newTestEngine()
	code := e.Store.GenerateRoomCode()
	host := &Player{Id: newPlayerId(), Username: "host"}
	e.Store.CreateRoom(code, 60, DefaultMaxPlayers, host.Id)
	require.NoError(t, e.Store.AddPlayer(code, host))
	other := joinPlayer(t, e, code, "other")
	require.NoError(t, e.StartGame(code, host.Id))

	room := e.Store.GetRoom(code)
	require.NoError(t, e.HandleChat(code, room.CurrentDrawer, "no spoilers"))

	room = e.Store.GetRoom(code)
	outsiderId := host.Id
	if room.isWinner(host.Id) {
		outsiderId = other.Id
	}

	view := FilteredView(room, outsiderId)
	assert.Empty(t, view.ChatMessages, "winners-only chat must be stripped from a non-winner's view")
}
