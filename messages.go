/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`                // "join", "select_mode", "start_round", "speaking_order", "start_voting", "vote", "reveal", "return_lobby", "leave", "resync"
	PlayerID string `json:"player_id,omitempty"` // join (reconnect), beacon fallback
	Name     string `json:"name,omitempty"`      // join
	Mode     string `json:"mode,omitempty"`      // select_mode / start_round
	ListKey  string `json:"list_key,omitempty"`  // start_round with a custom word list
	TargetID string `json:"target_id,omitempty"` // vote
}

// WelcomeMessage is sent to a single client right after a successful join
// or reconnect, so it knows its own id before the first room snapshot.
type WelcomeMessage struct {
	Type        string `json:"type"` // "welcome"
	PlayerID    string `json:"player_id"`
	Reconnected bool   `json:"reconnected"`
}

// RoundView is the personalized slice of round state one player may see.
// Secret content belonging to other players never leaves the server.
type RoundView struct {
	Mode GameMode `json:"mode"`

	IsImpostor bool   `json:"is_impostor,omitempty"`
	Word       string `json:"word,omitempty"`
	Location   string `json:"location,omitempty"`
	Role       string `json:"role,omitempty"`
	Category   string `json:"category,omitempty"`
	Question   string `json:"question,omitempty"`

	SpeakingOrder []string `json:"speaking_order,omitempty"`
	VotingStarted bool     `json:"voting_started"`
	VotesCast     int      `json:"votes_cast"`
	VotedIDs      []string `json:"voted_ids,omitempty"`
	Revealed      bool     `json:"revealed"`
}

// RoomStateMessage carries a full snapshot. It is broadcast after every
// mutation and answers explicit resync requests; passive viewers and
// players converge on it without pulling.
type RoomStateMessage struct {
	Type    string      `json:"type"` // "room_state"
	Code    string      `json:"code"`
	HostID  string      `json:"host_id"`
	Status  RoomStatus  `json:"status"`
	Mode    GameMode    `json:"mode,omitempty"`
	Players []Player    `json:"players"`
	You     string      `json:"you,omitempty"`
	Round   *RoundView  `json:"round,omitempty"`
	Result  *VoteResult `json:"result,omitempty"`
}

// NoticeMessage informs everyone about a lifecycle event in prose.
type NoticeMessage struct {
	Type    string `json:"type"`  // "notice"
	Event   string `json:"event"` // "player_joined", "player_disconnected", "player_left", "host_changed"
	Message string `json:"message,omitempty"`
}

// ErrorMessage goes only to the client whose action failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}
