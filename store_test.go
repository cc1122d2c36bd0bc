package main

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoom(code string) Room {
	return Room{
		Code:   code,
		HostID: "p1",
		Status: StatusWaiting,
		Players: []Player{
			{ID: "p1", Name: "Ana", Connected: true},
			{ID: "p2", Name: "Bruno", Connected: true},
		},
		CreatedAt: time.Now(),
	}
}

func TestRoomStore_CreateAndGet(t *testing.T) {
	s := NewRoomStore()

	created, err := s.Create(testRoom("AAAAAA"))
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", created.Code)

	got, err := s.Get("AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.HostID)
	assert.Len(t, got.Players, 2)

	_, err = s.Create(testRoom("AAAAAA"))
	assert.ErrorIs(t, err, errDuplicateCode)

	_, err = s.Get("ZZZZZZ")
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestRoomStore_GetReturnsCopy(t *testing.T) {
	s := NewRoomStore()
	_, err := s.Create(testRoom("AAAAAA"))
	require.NoError(t, err)

	got, err := s.Get("AAAAAA")
	require.NoError(t, err)

	// mutating the returned value must not leak into the store
	got.Players[0].Name = "Hacked"
	got.HostID = "p9"

	fresh, err := s.Get("AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "Ana", fresh.Players[0].Name)
	assert.Equal(t, "p1", fresh.HostID)
}

func TestRoomStore_Update(t *testing.T) {
	s := NewRoomStore()
	_, err := s.Create(testRoom("AAAAAA"))
	require.NoError(t, err)

	status := StatusPlaying
	impostor := "p2"
	patch := RoomPatch{Status: &status, ImpostorID: &impostor}
	patch.replaceRound(&RoundData{Mode: ModeSecretWord, Word: "Lighthouse", Votes: []Vote{}})

	updated, err := s.Update("AAAAAA", patch)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, updated.Status)
	assert.Equal(t, "p2", updated.ImpostorID)
	require.NotNil(t, updated.Round)
	assert.Equal(t, "Lighthouse", updated.Round.Word)

	// untouched fields survive a partial patch
	assert.Equal(t, "p1", updated.HostID)
	assert.Len(t, updated.Players, 2)

	// an unset Round field leaves the round alone; an explicit nil clears it
	updated, err = s.Update("AAAAAA", RoomPatch{HostID: &impostor})
	require.NoError(t, err)
	assert.NotNil(t, updated.Round)

	clearRound := RoomPatch{}
	clearRound.replaceRound(nil)
	updated, err = s.Update("AAAAAA", clearRound)
	require.NoError(t, err)
	assert.Nil(t, updated.Round)

	_, err = s.Update("ZZZZZZ", RoomPatch{})
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestRoomStore_AddPlayerIdempotent(t *testing.T) {
	s := NewRoomStore()
	_, err := s.Create(testRoom("AAAAAA"))
	require.NoError(t, err)

	room, err := s.AddPlayer("AAAAAA", Player{ID: "p3", Name: "Carla", Connected: true})
	require.NoError(t, err)
	assert.Len(t, room.Players, 3)

	// re-adding the same id is a no-op, absorbing reconnection races
	room, err = s.AddPlayer("AAAAAA", Player{ID: "p3", Name: "Someone Else"})
	require.NoError(t, err)
	assert.Len(t, room.Players, 3)
	p, ok := room.player("p3")
	require.True(t, ok)
	assert.Equal(t, "Carla", p.Name)

	_, err = s.AddPlayer("ZZZZZZ", Player{ID: "p9"})
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestRoomStore_RemovePlayer(t *testing.T) {
	s := NewRoomStore()
	_, err := s.Create(testRoom("AAAAAA"))
	require.NoError(t, err)

	room, err := s.RemovePlayer("AAAAAA", "p2")
	require.NoError(t, err)
	assert.Len(t, room.Players, 1)
	assert.Equal(t, "p1", room.Players[0].ID)

	// removing an absent player leaves the room unchanged
	room, err = s.RemovePlayer("AAAAAA", "p9")
	require.NoError(t, err)
	assert.Len(t, room.Players, 1)

	_, err = s.RemovePlayer("ZZZZZZ", "p1")
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestRoomStore_RemoveHostMigratesInSameWrite(t *testing.T) {
	s := NewRoomStore()
	_, err := s.Create(Room{Code: "AAAAAA", HostID: "a", Players: []Player{
		{ID: "a", Name: "Ana", Connected: true},
		{ID: "b", Name: "Bruno", Connected: false},
		{ID: "c", Name: "Carla", Connected: true},
	}})
	require.NoError(t, err)

	room, err := s.RemovePlayer("AAAAAA", "a")
	require.NoError(t, err)
	assert.Equal(t, "c", room.HostID, "host passes to the earliest-joined connected survivor")

	// removing a non-host leaves the host alone
	room, err = s.RemovePlayer("AAAAAA", "b")
	require.NoError(t, err)
	assert.Equal(t, "c", room.HostID)

	// only disconnected players left: anyone is better than nobody
	_, err = s.Create(Room{Code: "BBBBBB", HostID: "a", Players: []Player{
		{ID: "a", Name: "Ana", Connected: true},
		{ID: "b", Name: "Bruno", Connected: false},
	}})
	require.NoError(t, err)

	room, err = s.RemovePlayer("BBBBBB", "a")
	require.NoError(t, err)
	assert.Equal(t, "b", room.HostID)
}

func TestRoomStore_HostNeverDangles(t *testing.T) {
	s := NewRoomStore()

	stop := make(chan struct{})
	var violations atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			room, err := s.Get("AAAAAA")
			if err != nil || len(room.Players) == 0 {
				continue
			}
			seated := false
			for _, p := range room.Players {
				if p.ID == room.HostID {
					seated = true
					break
				}
			}
			if !seated {
				violations.Add(1)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		_, err := s.Create(Room{Code: "AAAAAA", HostID: "a", Players: []Player{
			{ID: "a", Name: "Ana", Connected: true},
			{ID: "b", Name: "Bruno", Connected: true},
			{ID: "c", Name: "Carla", Connected: true},
		}})
		require.NoError(t, err)
		for _, id := range []string{"a", "b", "c"} {
			_, err := s.RemovePlayer("AAAAAA", id)
			require.NoError(t, err)
		}
		s.Delete("AAAAAA")
	}

	close(stop)
	wg.Wait()
	assert.Zero(t, violations.Load(), "a reader observed a host missing from the player list")
}

func TestRoomStore_List(t *testing.T) {
	s := NewRoomStore()
	assert.Empty(t, s.List())

	_, err := s.Create(testRoom("AAAAAA"))
	require.NoError(t, err)
	_, err = s.Create(testRoom("BBBBBB"))
	require.NoError(t, err)

	assert.Len(t, s.List(), 2)

	s.Delete("AAAAAA")
	assert.Len(t, s.List(), 1)
	assert.False(t, s.Exists("AAAAAA"))
	assert.True(t, s.Exists("BBBBBB"))
}

func TestNewRoomCode(t *testing.T) {
	s := NewRoomStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := newRoomCode(s)
		assert.Len(t, code, roomCodeLength)
		for _, r := range code {
			assert.Contains(t, roomCodeChars, string(r))
		}
		assert.False(t, seen[code], "code %s generated twice", code)
		seen[code] = true

		_, err := s.Create(Room{Code: code})
		require.NoError(t, err)
	}
}
