/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"sync"
	"time"
)

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
)

type GameMode string

const (
	ModeSecretWord GameMode = "secret_word"
	ModeLocation   GameMode = "location"
	ModeUndercover GameMode = "undercover"
	ModeCategory   GameMode = "category"
	ModeQuestions  GameMode = "questions"
)

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Waiting   bool   `json:"waitingForNextRound"`
}

type Vote struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// RoundData is the per-round payload, discriminated by Mode. Which of the
// content fields are set depends on the mode; the transient voting state
// at the bottom is common to all of them.
type RoundData struct {
	Mode GameMode `json:"mode"`

	Word         string            `json:"word,omitempty"`
	ImpostorWord string            `json:"impostorWord,omitempty"`
	Location     string            `json:"location,omitempty"`
	Roles        map[string]string `json:"roles,omitempty"`
	Category     string            `json:"category,omitempty"`
	Question     string            `json:"question,omitempty"`
	OddQuestion  string            `json:"oddQuestion,omitempty"`

	SpeakingOrder []string `json:"speakingOrder,omitempty"`
	Votes         []Vote   `json:"votes"`
	VotingStarted bool     `json:"votingStarted"`
	VotesRevealed bool     `json:"votesRevealed"`
}

func (r *RoundData) clone() *RoundData {
	if r == nil {
		return nil
	}
	out := *r
	if r.Roles != nil {
		out.Roles = make(map[string]string, len(r.Roles))
		for k, v := range r.Roles {
			out.Roles[k] = v
		}
	}
	out.SpeakingOrder = append([]string(nil), r.SpeakingOrder...)
	out.Votes = append([]Vote(nil), r.Votes...)
	return &out
}

type Room struct {
	Code       string     `json:"code"`
	HostID     string     `json:"hostId"`
	Status     RoomStatus `json:"status"`
	Mode       GameMode   `json:"selectedMode,omitempty"`
	ImpostorID string     `json:"-"`
	Round      *RoundData `json:"-"`
	Players    []Player   `json:"players"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (r Room) clone() Room {
	out := r
	out.Players = append([]Player(nil), r.Players...)
	out.Round = r.Round.clone()
	return out
}

func (r Room) player(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// RoomPatch is an explicit replacement value for top-level room fields.
// Nil fields are left untouched; Round and Players, when set, replace the
// previous value wholesale. The store never deep-merges and callers never
// mutate a room they read back.
type RoomPatch struct {
	HostID     *string
	Status     *RoomStatus
	Mode       *GameMode
	ImpostorID *string
	Round      *RoundData
	setRound   bool
	Players    []Player
	setPlayers bool
}

func (p *RoomPatch) replaceRound(r *RoundData) *RoomPatch {
	p.Round = r
	p.setRound = true
	return p
}

func (p *RoomPatch) replacePlayers(players []Player) *RoomPatch {
	p.Players = players
	p.setPlayers = true
	return p
}

// RoomStore is the authoritative in-memory room table. Every accessor
// works on copies; the per-room hub goroutine is the only writer for its
// room, so store operations on one room never interleave.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
	}
}

func (s *RoomStore) Create(room Room) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.Code]; exists {
		return Room{}, errDuplicateCode
	}

	stored := room.clone()
	s.rooms[room.Code] = &stored

	return stored.clone(), nil
}

func (s *RoomStore) Get(code string) (Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[code]
	if !exists {
		return Room{}, errRoomNotFound
	}

	return room.clone(), nil
}

func (s *RoomStore) Update(code string, patch RoomPatch) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[code]
	if !exists {
		return Room{}, errRoomNotFound
	}

	if patch.HostID != nil {
		room.HostID = *patch.HostID
	}
	if patch.Status != nil {
		room.Status = *patch.Status
	}
	if patch.Mode != nil {
		room.Mode = *patch.Mode
	}
	if patch.ImpostorID != nil {
		room.ImpostorID = *patch.ImpostorID
	}
	if patch.setRound {
		room.Round = patch.Round.clone()
	}
	if patch.setPlayers {
		room.Players = append([]Player(nil), patch.Players...)
	}

	return room.clone(), nil
}

// AddPlayer is idempotent: re-adding an existing player id returns the
// unchanged room, which absorbs reconnection races.
func (s *RoomStore) AddPlayer(code string, player Player) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[code]
	if !exists {
		return Room{}, errRoomNotFound
	}

	for _, p := range room.Players {
		if p.ID == player.ID {
			return room.clone(), nil
		}
	}

	room.Players = append(room.Players, player)

	return room.clone(), nil
}

// RemovePlayer deletes a seat and, when the seat belonged to the host,
// migrates the host role in the same write: first a connected survivor in
// join order, then anyone left. Removal and migration share one critical
// section so no reader can observe a host missing from the player list.
func (s *RoomStore) RemovePlayer(code, playerID string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[code]
	if !exists {
		return Room{}, errRoomNotFound
	}

	dst := room.Players[:0]
	for _, p := range room.Players {
		if p.ID == playerID {
			continue
		}
		dst = append(dst, p)
	}
	room.Players = dst

	if room.HostID == playerID && len(room.Players) > 0 {
		next := &room.Players[0]
		for i := range room.Players {
			if room.Players[i].Connected {
				next = &room.Players[i]
				break
			}
		}
		room.HostID = next.ID
	}

	return room.clone(), nil
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

func (s *RoomStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.rooms[code]
	return exists
}

// List returns copies of every room, for operational monitoring.
func (s *RoomStore) List() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room.clone())
	}
	return out
}

const (
	roomCodeLength = 6

	// excludes ambiguous characters (0/O, 1/I)
	roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// newRoomCode generates a crypto-random room code and ensures it doesn't
// collide with an existing room.
func newRoomCode(store *RoomStore) string {
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = roomCodeChars[int(buf[i])%len(roomCodeChars)]
		}
		code := string(out)

		if !store.Exists(code) {
			return code
		}
	}
}
