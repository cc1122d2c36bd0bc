/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// EventSink receives fire-and-forget lifecycle notifications. The core
// never depends on their outcome.
type EventSink interface {
	RoomCreated(code string)
	PlayerJoined(code, playerID string)
}

type logSink struct {
	cfg *Config
}

func (s logSink) RoomCreated(code string) {
	logf(s.cfg, "EVENT: room-created %s", code)
}

func (s logSink) PlayerJoined(code, playerID string) {
	logf(s.cfg, "EVENT: player-joined %s %s", code, playerID)
}

// RoomManager holds a hub per room code, so each /play/:code is its own
// isolated session.
type RoomManager struct {
	mu     sync.Mutex
	hubs   map[string]*Hub
	cfg    *Config
	store  *RoomStore
	words  WordlistProvider
	events EventSink
}

func newRoomManager(cfg *Config, store *RoomStore, words WordlistProvider, events EventSink) *RoomManager {
	rm := &RoomManager{
		hubs:   make(map[string]*Hub),
		cfg:    cfg,
		store:  store,
		words:  words,
		events: events,
	}
	if cfg.roomIdleTimeout > 0 {
		go rm.reaperLoop()
	}
	return rm
}

func (rm *RoomManager) getHub(code string) *Hub {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if hub, ok := rm.hubs[code]; ok {
		return hub
	}

	hub := newHub(code, rm.store, rm.words, rm.events, rm.removeHub)
	rm.hubs[code] = hub
	go hub.run(rm.cfg)
	return hub
}

// lookupHub never creates; beacons and inspectors only touch live rooms.
func (rm *RoomManager) lookupHub(code string) (*Hub, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	hub, ok := rm.hubs[code]
	return hub, ok
}

func (rm *RoomManager) removeHub(code string) {
	rm.mu.Lock()
	delete(rm.hubs, code)
	rm.mu.Unlock()
}

// reaperLoop periodically ends rooms that have been idle longer than the
// configured timeout.
func (rm *RoomManager) reaperLoop() {
	ticker := time.NewTicker(rm.cfg.roomIdleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-rm.cfg.roomIdleTimeout)

		rm.mu.Lock()
		var stale []*Hub
		for code, hub := range rm.hubs {
			if hub.idle(cutoff) {
				delete(rm.hubs, code)
				stale = append(stale, hub)
			}
		}
		rm.mu.Unlock()

		for _, hub := range stale {
			logf(rm.cfg, "GAMES: Reaping idle room %s", hub.code)
			hub.stop()
			rm.store.Delete(hub.code)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// WebSocket handler that picks the hub based on :code
func serveWSForRooms(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := normalizeRoomCode(ps.ByName("code"))
		if code == "" || len(code) > 2*roomCodeLength {
			http.Error(w, "invalid room code", http.StatusBadRequest)
			return
		}

		hub := rm.getHub(code)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := newClient(conn)

		go client.writePump(cfg)
		client.readPump(hub, cfg)
	}
}

// serveBeacon is the plain-HTTP fallback for clients whose socket is
// already gone, typically a page-unload beacon. hard selects between an
// immediate leave and the usual disconnect grace window.
func serveBeacon(cfg *Config, rm *RoomManager, hard bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := normalizeRoomCode(ps.ByName("code"))
		playerID := r.FormValue("player_id")
		if playerID == "" {
			http.Error(w, "missing player_id", http.StatusBadRequest)
			return
		}

		hub, ok := rm.lookupHub(code)
		if !ok || !rm.store.Exists(code) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		select {
		case hub.beacons <- beaconEvent{playerID: playerID, hard: hard}:
		case <-hub.done:
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// roomSummary is the monitoring view: counts only, no player detail.
type roomSummary struct {
	Code        string     `json:"code"`
	Status      RoomStatus `json:"status"`
	Mode        GameMode   `json:"mode,omitempty"`
	PlayerCount int        `json:"playerCount"`
	Connected   int        `json:"connected"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// roomSnapshot is the read-only inspection view. Secret round content is
// deliberately absent.
type roomSnapshot struct {
	Code          string     `json:"code"`
	HostID        string     `json:"hostId"`
	Status        RoomStatus `json:"status"`
	Mode          GameMode   `json:"mode,omitempty"`
	Players       []Player   `json:"players"`
	CreatedAt     time.Time  `json:"createdAt"`
	VotingStarted bool       `json:"votingStarted"`
	VotesCast     int        `json:"votesCast"`
	VotesRevealed bool       `json:"votesRevealed"`

	// last heartbeat ack per seated connection, present only while the
	// room's hub is live
	LastHeartbeat map[string]time.Time `json:"lastHeartbeat,omitempty"`
}

func snapshotRoom(room Room) roomSnapshot {
	snap := roomSnapshot{
		Code:      room.Code,
		HostID:    room.HostID,
		Status:    room.Status,
		Mode:      room.Mode,
		Players:   room.Players,
		CreatedAt: room.CreatedAt,
	}
	if room.Round != nil {
		snap.VotingStarted = room.Round.VotingStarted
		snap.VotesCast = len(room.Round.Votes)
		snap.VotesRevealed = room.Round.VotesRevealed
	}
	return snap
}

func serveRoomList(cfg *Config, store *RoomStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		rooms := store.List()

		summaries := make([]roomSummary, 0, len(rooms))
		for _, room := range rooms {
			summary := roomSummary{
				Code:        room.Code,
				Status:      room.Status,
				Mode:        room.Mode,
				PlayerCount: len(room.Players),
				CreatedAt:   room.CreatedAt,
			}
			for _, p := range room.Players {
				if p.Connected {
					summary.Connected++
				}
			}
			summaries = append(summaries, summary)
		}

		w.Header().Set("Content-Type", "application/json")
		securityHeaders(cfg, w)
		_ = json.NewEncoder(w).Encode(summaries)
	}
}

func serveRoomSnapshot(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := normalizeRoomCode(ps.ByName("code"))

		room, err := rm.store.Get(code)
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		snap := snapshotRoom(room)
		if hub, ok := rm.lookupHub(code); ok {
			snap.LastHeartbeat = hub.heartbeats()
		}

		w.Header().Set("Content-Type", "application/json")
		securityHeaders(cfg, w)
		_ = json.NewEncoder(w).Encode(snap)
	}
}

// QR handler: generates a PNG QR code for the current room URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:code/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// redirectNewRoom handles GET /play by generating a fresh collision-checked
// room code and redirecting to /play/:code.
func redirectNewRoom(cfg *Config, path string, store *RoomStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code := newRoomCode(store)
		logf(cfg, "GAMES: Created room %s/%s", path, code)
		http.Redirect(w, r, path+"/"+code, http.StatusTemporaryRedirect)
	}
}

// registerRooms sets up routes so that:
//   - $path                      → redirects to a new random room
//   - $path/:code                → HTML client
//   - $path/:code/ws             → WebSocket for that room
//   - $path/:code/qr             → PNG QR code for that room URL
//   - $path/:code/leave          → hard-exit beacon fallback
//   - $path/:code/disconnect     → soft-disconnect beacon fallback
//   - /api/rooms, /api/rooms/:code → read-only monitoring views
func registerRooms(cfg *Config, path string, mux *httprouter.Router, rm *RoomManager) {
	mux.GET(cfg.prefix+path, redirectNewRoom(cfg, cfg.prefix+path, rm.store))

	mux.GET(cfg.prefix+path+"/:code", serveRoomPage(cfg))

	mux.GET(cfg.prefix+path+"/:code/ws", serveWSForRooms(cfg, rm))

	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler)

	mux.POST(cfg.prefix+path+"/:code/leave", serveBeacon(cfg, rm, true))

	mux.POST(cfg.prefix+path+"/:code/disconnect", serveBeacon(cfg, rm, false))

	mux.GET(cfg.prefix+"/api/rooms", serveRoomList(cfg, rm.store))

	mux.GET(cfg.prefix+"/api/rooms/:code", serveRoomSnapshot(cfg, rm))
}
