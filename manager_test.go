package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) *RoomManager {
	t.Helper()
	return newRoomManager(testConfig(), NewRoomStore(), staticWordlists{}, &recordingSink{})
}

func TestRoomManager_GetHubReuses(t *testing.T) {
	rm := testManager(t)

	h1 := rm.getHub("ROOM01")
	h2 := rm.getHub("ROOM01")
	h3 := rm.getHub("ROOM02")

	assert.Same(t, h1, h2)
	assert.NotSame(t, h1, h3)

	h1.stop()
	h3.stop()
}

func TestRoomManager_LookupNeverCreates(t *testing.T) {
	rm := testManager(t)

	_, ok := rm.lookupHub("ROOM01")
	assert.False(t, ok)

	h := rm.getHub("ROOM01")
	found, ok := rm.lookupHub("ROOM01")
	require.True(t, ok)
	assert.Same(t, h, found)

	rm.removeHub("ROOM01")
	_, ok = rm.lookupHub("ROOM01")
	assert.False(t, ok)

	h.stop()
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABC234", normalizeRoomCode("  abc234 "))
	assert.Equal(t, "ROOM01", normalizeRoomCode("room01"))
}

func TestServeBeacon(t *testing.T) {
	rm := testManager(t)
	handle := serveBeacon(rm.cfg, rm, false)

	params := httprouter.Params{{Key: "code", Value: "ROOM01"}}

	t.Run("missing player_id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/play/ROOM01/disconnect", nil)
		w := httptest.NewRecorder()
		handle(w, r, params)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		form := url.Values{"player_id": {"a"}}
		r := httptest.NewRequest(http.MethodPost, "/play/ROOM01/disconnect", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		handle(w, r, params)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("live room accepts the beacon", func(t *testing.T) {
		hub := rm.getHub("ROOM01")
		defer hub.stop()
		_, err := rm.store.Create(Room{
			Code:      "ROOM01",
			HostID:    "a",
			Status:    StatusWaiting,
			Players:   []Player{{ID: "a", Name: "Ana", Connected: true}},
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		form := url.Values{"player_id": {"a"}}
		r := httptest.NewRequest(http.MethodPost, "/play/ROOM01/disconnect", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		handle(w, r, params)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestServeRoomList(t *testing.T) {
	cfg := testConfig()
	store := NewRoomStore()
	_, err := store.Create(Room{
		Code:   "ROOM01",
		HostID: "a",
		Status: StatusWaiting,
		Players: []Player{
			{ID: "a", Name: "Ana", Connected: true},
			{ID: "b", Name: "Bruno", Connected: false},
		},
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	w := httptest.NewRecorder()
	serveRoomList(cfg, store)(w, r, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var summaries []roomSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "ROOM01", summaries[0].Code)
	assert.Equal(t, 2, summaries[0].PlayerCount)
	assert.Equal(t, 1, summaries[0].Connected)
}

func TestServeRoomSnapshot(t *testing.T) {
	rm := testManager(t)
	store := rm.store
	room := Room{
		Code:       "ROOM01",
		HostID:     "a",
		Status:     StatusPlaying,
		Mode:       ModeSecretWord,
		ImpostorID: "b",
		Round: &RoundData{
			Mode:          ModeSecretWord,
			Word:          "Guaraná",
			VotingStarted: true,
			Votes:         []Vote{{VoterID: "a", TargetID: "b"}},
		},
		Players: []Player{
			{ID: "a", Name: "Ana", Connected: true},
			{ID: "b", Name: "Bruno", Connected: true},
		},
		CreatedAt: time.Now(),
	}
	_, err := store.Create(room)
	require.NoError(t, err)

	hub := rm.getHub("ROOM01")
	defer hub.stop()
	hub.addClient(&Client{send: make(chan any, 8), playerID: "a"})

	r := httptest.NewRequest(http.MethodGet, "/api/rooms/room01", nil)
	w := httptest.NewRecorder()
	serveRoomSnapshot(rm.cfg, rm)(w, r, httprouter.Params{{Key: "code", Value: "room01"}})

	require.Equal(t, http.StatusOK, w.Code)

	var snap roomSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "ROOM01", snap.Code)
	assert.True(t, snap.VotingStarted)
	assert.Equal(t, 1, snap.VotesCast)

	// heartbeat acks surface per seated connection while the hub is live
	assert.Contains(t, snap.LastHeartbeat, "a")

	// secret content never leaves through the inspection surface
	assert.NotContains(t, w.Body.String(), "Guaraná")
	assert.NotContains(t, w.Body.String(), "impostor")

	w = httptest.NewRecorder()
	serveRoomSnapshot(rm.cfg, rm)(w, r, httprouter.Params{{Key: "code", Value: "NOPE"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedirectNewRoom(t *testing.T) {
	cfg := testConfig()
	store := NewRoomStore()

	r := httptest.NewRequest(http.MethodGet, "/play", nil)
	w := httptest.NewRecorder()
	redirectNewRoom(cfg, "/play", store)(w, r, nil)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/play/"))
	code := strings.TrimPrefix(location, "/play/")
	assert.Len(t, code, roomCodeLength)
	for _, r := range code {
		assert.Contains(t, roomCodeChars, string(r))
	}
}

func TestQRHandler(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/play/ROOM01/qr", nil)
	r.Host = "example.com"
	w := httptest.NewRecorder()
	qrHandler(w, r, httprouter.Params{{Key: "code", Value: "ROOM01"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = httptest.NewRecorder()
	qrHandler(w, r, httprouter.Params{{Key: "code", Value: ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
