/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type actionRequest struct {
	client *Client
	msg    ClientMessage
}

type beaconEvent struct {
	playerID string
	hard     bool
}

// Hub owns everything about one room: its connections, its removal
// timers, and its allocator. All room mutations happen inside run, one
// message at a time, so broadcasts always follow processing order.
type Hub struct {
	code   string
	store  *RoomStore
	alloc  *Allocator
	words  WordlistProvider
	events EventSink

	clients map[*Client]bool

	unreg    chan *Client
	actions  chan actionRequest
	beacons  chan beaconEvent
	expiries chan string

	timers   *removalTimers
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time

	// called from run once the last player is gone
	onEmpty func(code string)
}

func newHub(code string, store *RoomStore, words WordlistProvider, events EventSink, onEmpty func(code string)) *Hub {
	now := time.Now()
	return &Hub{
		code:       code,
		store:      store,
		alloc:      newAllocator(code),
		words:      words,
		events:     events,
		clients:    make(map[*Client]bool),
		unreg:      make(chan *Client),
		actions:    make(chan actionRequest),
		beacons:    make(chan beaconEvent, 8),
		expiries:   make(chan string, 64),
		timers:     newRemovalTimers(),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		onEmpty:    onEmpty,
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.unreg:
			h.handleUnregister(cfg, c)

		case ar := <-h.actions:
			h.handleAction(cfg, ar)

		case ev := <-h.beacons:
			h.handleBeacon(cfg, ev)

		case playerID := <-h.expiries:
			h.handleGraceExpiry(cfg, playerID)
		}
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

// heartbeats reports the last heartbeat ack per seated connection, for
// the monitoring snapshot.
func (h *Hub) heartbeats() map[string]time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]time.Time, len(h.clients))
	for c := range h.clients {
		if c.playerID == "" {
			continue
		}
		out[c.playerID] = time.Unix(0, c.lastAck.Load())
	}
	return out
}

func (h *Hub) idle(cutoff time.Time) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastActive.Before(cutoff)
}

// stop ends the run loop, cancels all timers, and disconnects everyone.
// Safe to call from both the reaper and the run loop: shutdown happens
// exactly once.
func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.timers.stopAll()

		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.clients {
			close(c.send)
			if c.conn != nil {
				_ = c.conn.Close()
			}
			delete(h.clients, c)
		}
	})
}

// sendTo holds the hub mutex across the send so a concurrent stop cannot
// close the channel mid-flight; after shutdown it is a quiet no-op.
func (h *Hub) sendTo(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	default:
		if h.clients[c] {
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) sendError(c *Client, err error) {
	code := "invalid_action"
	var insufficient *InsufficientPlayersError
	switch {
	case errors.Is(err, errRoomNotFound), errors.Is(err, errPlayerNotFound):
		code = "not_found"
	case errors.Is(err, errDuplicateVote):
		code = "duplicate_vote"
	case errors.Is(err, errVotingNotStarted):
		code = "voting_not_started"
	case errors.Is(err, errVotingStarted):
		code = "voting_already_started"
	case errors.Is(err, errNotHost):
		code = "not_host"
	case errors.Is(err, errEmptyPool):
		code = "empty_pool"
	case errors.As(err, &insufficient):
		code = "insufficient_players"
	}

	h.sendTo(c, ErrorMessage{Type: "error", Code: code, Message: err.Error()})
}

// buildRoundView narrows round state to what one player may see. Waiting
// players and unknown viewers get the public shell only.
func buildRoundView(room Room, playerID string) *RoundView {
	if room.Round == nil {
		return nil
	}
	round := room.Round

	view := &RoundView{
		Mode:          round.Mode,
		SpeakingOrder: round.SpeakingOrder,
		VotingStarted: round.VotingStarted,
		VotesCast:     len(round.Votes),
		Revealed:      round.VotesRevealed,
	}
	for _, v := range round.Votes {
		view.VotedIDs = append(view.VotedIDs, v.VoterID)
	}

	player, ok := room.player(playerID)
	if !ok || player.Waiting {
		return view
	}

	impostor := playerID == room.ImpostorID

	switch round.Mode {
	case ModeSecretWord:
		if impostor {
			view.IsImpostor = true
		} else {
			view.Word = round.Word
		}
	case ModeLocation:
		if impostor {
			view.IsImpostor = true
		} else {
			view.Location = round.Location
			view.Role = round.Roles[playerID]
		}
	case ModeUndercover:
		// Neither faction learns which word it holds; identity stays
		// hidden until the reveal.
		if impostor {
			view.Word = round.ImpostorWord
		} else {
			view.Word = round.Word
		}
	case ModeCategory:
		view.Category = round.Category
		if impostor {
			view.IsImpostor = true
		} else {
			view.Word = round.Word
		}
	case ModeQuestions:
		if impostor {
			view.Question = round.OddQuestion
		} else {
			view.Question = round.Question
		}
	}

	return view
}

func (h *Hub) stateFor(room Room, playerID string) RoomStateMessage {
	msg := RoomStateMessage{
		Type:    "room_state",
		Code:    room.Code,
		HostID:  room.HostID,
		Status:  room.Status,
		Mode:    room.Mode,
		Players: room.Players,
		You:     playerID,
		Round:   buildRoundView(room, playerID),
	}
	if room.Round != nil && room.Round.VotesRevealed {
		msg.Result = tallyVotes(room)
	}
	return msg
}

// broadcastState fans the current snapshot out to every connection, each
// seeing only its own secrets.
func (h *Hub) broadcastState(room Room) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.sendTo(c, h.stateFor(room, c.playerID))
	}
}

func (h *Hub) broadcastNotice(event, message string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	msg := NoticeMessage{Type: "notice", Event: event, Message: message}
	for _, c := range clients {
		h.sendTo(c, msg)
	}
}

func (h *Hub) handleAction(cfg *Config, ar actionRequest) {
	h.touch()

	c := ar.client
	msg := ar.msg

	if msg.Type == "join" {
		h.handleJoin(cfg, c, msg)
		return
	}

	if c.playerID == "" {
		h.sendError(c, errPlayerNotFound)
		return
	}

	room, err := h.store.Get(h.code)
	if err != nil {
		h.sendError(c, err)
		return
	}

	isHost := c.playerID == room.HostID

	switch msg.Type {
	case "leave":
		// Hard exit: no grace window.
		h.timers.cancel(c.playerID)
		h.removePlayer(cfg, c.playerID)
		h.dropClient(c)

	case "resync":
		h.sendTo(c, h.stateFor(room, c.playerID))

	case "vote":
		patch, err := submitVote(room, c.playerID, msg.TargetID)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.applyAndBroadcast(cfg, patch)

	case "select_mode":
		if !isHost {
			h.sendError(c, errNotHost)
			return
		}
		patch, err := selectMode(room, GameMode(msg.Mode))
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.applyAndBroadcast(cfg, patch)

	case "start_round":
		if !isHost {
			h.sendError(c, errNotHost)
			return
		}
		mode := room.Mode
		if msg.Mode != "" {
			mode = GameMode(msg.Mode)
		}
		patch, err := startRound(room, mode, cfg.minPlayers, h.alloc, h.words, msg.ListKey)
		if err != nil {
			if errors.Is(err, errEmptyPool) {
				log.Printf("%s | ERROR: empty content pool in room %s, mode %s", time.Now().Format(logDate), h.code, mode)
			}
			h.sendError(c, err)
			return
		}
		logf(cfg, "GAMES: Round started in %s (%s)", h.code, mode)
		h.applyAndBroadcast(cfg, patch)

	case "speaking_order":
		if !isHost {
			h.sendError(c, errNotHost)
			return
		}
		patch, _, err := revealSpeakingOrder(room)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.applyAndBroadcast(cfg, patch)

	case "start_voting":
		if !isHost {
			h.sendError(c, errNotHost)
			return
		}
		patch, err := startVoting(room)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.applyAndBroadcast(cfg, patch)

	case "reveal":
		if !isHost {
			h.sendError(c, errNotHost)
			return
		}
		patch, err := revealImpostor(room)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.applyAndBroadcast(cfg, patch)

	case "return_lobby":
		if !isHost {
			h.sendError(c, errNotHost)
			return
		}
		patch, err := returnToLobby(room)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.applyAndBroadcast(cfg, patch)
	}
}

// applyAndBroadcast commits a patch and fans out the new snapshot. An
// empty patch still rebroadcasts, which covers idempotent operations.
func (h *Hub) applyAndBroadcast(cfg *Config, patch RoomPatch) {
	room, err := h.store.Update(h.code, patch)
	if err != nil {
		logf(cfg, "GAMES: Dropping update for vanished room %s", h.code)
		return
	}
	h.broadcastState(room)
}

func (h *Hub) handleJoin(cfg *Config, c *Client, msg ClientMessage) {
	playerID := msg.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}

	room, err := h.store.Get(h.code)
	if errors.Is(err, errRoomNotFound) {
		// First player in: create the room with them as host.
		room, err = h.store.Create(Room{
			Code:      h.code,
			HostID:    playerID,
			Status:    StatusWaiting,
			Players:   []Player{{ID: playerID, Name: msg.Name, Connected: true}},
			CreatedAt: time.Now(),
		})
		if err != nil {
			h.sendError(c, err)
			return
		}

		c.playerID = playerID
		h.addClient(c)
		h.events.RoomCreated(h.code)
		logf(cfg, "GAMES: Player %q created room %s", msg.Name, h.code)

		h.sendTo(c, WelcomeMessage{Type: "welcome", PlayerID: playerID})
		h.broadcastState(room)
		return
	}
	if err != nil {
		h.sendError(c, err)
		return
	}

	if existing, ok := room.player(playerID); ok {
		// Reconnect: same seat, same role, cancel the pending removal.
		h.timers.cancel(playerID)

		c.playerID = playerID
		h.addClient(c)

		players := append([]Player(nil), room.Players...)
		for i := range players {
			if players[i].ID == playerID {
				players[i].Connected = true
			}
		}
		patch := RoomPatch{}
		patch.replacePlayers(players)

		room, err = h.store.Update(h.code, patch)
		if err != nil {
			h.sendError(c, err)
			return
		}

		logf(cfg, "GAMES: Player %q reconnected to %s", existing.Name, h.code)
		h.sendTo(c, WelcomeMessage{Type: "welcome", PlayerID: playerID, Reconnected: true})
		h.broadcastState(room)
		return
	}

	player := Player{
		ID:        playerID,
		Name:      msg.Name,
		Connected: true,
		// Mid-round joiners wait out the current round.
		Waiting: room.Status == StatusPlaying,
	}

	room, err = h.store.AddPlayer(h.code, player)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.playerID = playerID
	h.addClient(c)
	h.events.PlayerJoined(h.code, playerID)
	logf(cfg, "GAMES: Player %q joined %s", msg.Name, h.code)

	h.sendTo(c, WelcomeMessage{Type: "welcome", PlayerID: playerID})
	h.broadcastNotice("player_joined", player.Name+" joined the room.")
	h.broadcastState(room)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) dropClient(c *Client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// handleUnregister runs when a socket dies for any reason: heartbeat
// timeout, network failure, or plain closure. The player keeps their seat
// for the grace window.
func (h *Hub) handleUnregister(cfg *Config, c *Client) {
	h.touch()

	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if c.playerID == "" {
		return
	}

	// A replacement connection for the same player may already be up.
	h.mu.RLock()
	replaced := false
	for other := range h.clients {
		if other.playerID == c.playerID {
			replaced = true
			break
		}
	}
	h.mu.RUnlock()
	if replaced {
		return
	}

	h.markDisconnected(cfg, c.playerID)
}

// markDisconnected flips the player's connected flag, notifies the room,
// and arms the removal timer.
func (h *Hub) markDisconnected(cfg *Config, playerID string) {
	room, err := h.store.Get(h.code)
	if err != nil {
		return
	}

	player, ok := room.player(playerID)
	if !ok {
		return
	}
	if player.Connected {
		players := append([]Player(nil), room.Players...)
		for i := range players {
			if players[i].ID == playerID {
				players[i].Connected = false
			}
		}
		patch := RoomPatch{}
		patch.replacePlayers(players)

		room, err = h.store.Update(h.code, patch)
		if err != nil {
			return
		}

		logf(cfg, "GAMES: Player %q disconnected from %s", player.Name, h.code)
		h.broadcastNotice("player_disconnected", player.Name+" lost connection.")
		h.broadcastState(room)
	}

	h.timers.schedule(playerID, cfg.removalGrace, func() {
		select {
		case h.expiries <- playerID:
		case <-h.done:
		}
	})
}

// handleBeacon services the HTTP fallback for clients whose socket is
// already gone: a soft "about to disconnect" or a hard leave. Both follow
// the same transitions as the live-connection paths.
func (h *Hub) handleBeacon(cfg *Config, ev beaconEvent) {
	h.touch()

	if ev.hard {
		h.timers.cancel(ev.playerID)
		h.removePlayer(cfg, ev.playerID)
		return
	}

	h.markDisconnected(cfg, ev.playerID)
}

func (h *Hub) handleGraceExpiry(cfg *Config, playerID string) {
	room, err := h.store.Get(h.code)
	if err != nil {
		return
	}

	// A reconnect should have cancelled the timer, but guard against the
	// race where it fires while the join is still in the mailbox.
	if player, ok := room.player(playerID); !ok || player.Connected {
		return
	}

	h.removePlayer(cfg, playerID)
}

// removePlayer deletes a seat for good. The store migrates the host role
// in the same write when the leaver held it, so the hub only has to look
// up who inherited.
func (h *Hub) removePlayer(cfg *Config, playerID string) {
	room, err := h.store.Get(h.code)
	if err != nil {
		return
	}

	leaver, ok := room.player(playerID)
	if !ok {
		return
	}
	wasHost := room.HostID == playerID

	room, err = h.store.RemovePlayer(h.code, playerID)
	if err != nil {
		return
	}

	logf(cfg, "GAMES: Player %q removed from %s", leaver.Name, h.code)

	if len(room.Players) == 0 {
		h.store.Delete(h.code)
		if h.onEmpty != nil {
			h.onEmpty(h.code)
		}
		h.stop()
		return
	}

	var newHost *Player
	if wasHost {
		for i := range room.Players {
			if room.Players[i].ID == room.HostID {
				newHost = &room.Players[i]
				break
			}
		}
		if newHost != nil {
			logf(cfg, "GAMES: Host of %s migrated to %q", h.code, newHost.Name)
		}
	}

	h.broadcastNotice("player_left", leaver.Name+" left the room.")
	if newHost != nil {
		h.broadcastNotice("host_changed", newHost.Name+" is now the host.")
	}
	h.broadcastState(room)
}
