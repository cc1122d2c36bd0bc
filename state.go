/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"math/rand/v2"
)

// The state machine below never mutates a room in place. Every operation
// takes the current room value and returns a RoomPatch for the store to
// apply, so a failed validation leaves no partial write behind.

func validMode(mode GameMode) bool {
	switch mode {
	case ModeSecretWord, ModeLocation, ModeUndercover, ModeCategory, ModeQuestions:
		return true
	}
	return false
}

// eligiblePlayers are the players a round can be built from: connected and
// not queued for the next lobby.
func eligiblePlayers(room Room) []Player {
	eligible := make([]Player, 0, len(room.Players))
	for _, p := range room.Players {
		if p.Connected && !p.Waiting {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

func selectMode(room Room, mode GameMode) (RoomPatch, error) {
	if !validMode(mode) {
		return RoomPatch{}, errUnknownMode
	}
	if room.Status != StatusWaiting {
		return RoomPatch{}, errRoundInProgress
	}
	return RoomPatch{Mode: &mode}, nil
}

// startRound validates the lobby, draws one impostor uniformly among the
// eligible players, and asks the allocator for this mode's content shape.
// Ineligible players stay listed but take no part in the draw.
func startRound(room Room, mode GameMode, minPlayers int, alloc *Allocator, words WordlistProvider, listKey string) (RoomPatch, error) {
	if !validMode(mode) {
		return RoomPatch{}, errUnknownMode
	}
	if room.Status != StatusWaiting {
		return RoomPatch{}, errRoundInProgress
	}

	eligible := eligiblePlayers(room)
	if len(eligible) < minPlayers {
		disconnected := 0
		for _, p := range room.Players {
			if !p.Connected {
				disconnected++
			}
		}
		return RoomPatch{}, &InsufficientPlayersError{
			Eligible:     len(eligible),
			Disconnected: disconnected,
			Total:        len(room.Players),
			Required:     minPlayers,
		}
	}

	impostorID := eligible[rand.IntN(len(eligible))].ID

	round, err := buildRound(mode, eligible, impostorID, alloc, words, listKey)
	if err != nil {
		return RoomPatch{}, err
	}

	status := StatusPlaying
	patch := RoomPatch{
		Status:     &status,
		Mode:       &mode,
		ImpostorID: &impostorID,
	}
	patch.replaceRound(round)

	return patch, nil
}

// buildRound populates the mode-specific payload. The state machine knows
// nothing about the content itself beyond its shape.
func buildRound(mode GameMode, eligible []Player, impostorID string, alloc *Allocator, words WordlistProvider, listKey string) (*RoundData, error) {
	round := &RoundData{Mode: mode, Votes: []Vote{}}

	switch mode {
	case ModeSecretWord:
		source := secretWords
		poolKey := "word"
		if listKey != "" {
			if custom, ok := words.ApprovedWords(listKey); ok {
				source = custom
				poolKey = "word:" + listKey
			}
		}
		idx, err := alloc.Draw(poolKey, len(source))
		if err != nil {
			return nil, err
		}
		round.Word = source[idx]

	case ModeLocation:
		idx, err := alloc.Draw("location", len(locations))
		if err != nil {
			return nil, err
		}
		loc := locations[idx]
		round.Location = loc.Name
		round.Roles = make(map[string]string, len(eligible))

		order := rand.Perm(len(loc.Roles))
		next := 0
		for _, p := range eligible {
			if p.ID == impostorID {
				continue
			}
			round.Roles[p.ID] = loc.Roles[order[next%len(order)]]
			next++
		}

	case ModeUndercover:
		idx, err := alloc.Draw("word-pair", len(wordPairs))
		if err != nil {
			return nil, err
		}
		round.Word = wordPairs[idx].Civilian
		round.ImpostorWord = wordPairs[idx].Undercover

	case ModeCategory:
		idx, err := alloc.Draw("category", len(categories))
		if err != nil {
			return nil, err
		}
		cat := categories[idx]
		item, err := alloc.Draw("category-item:"+cat.Name, len(cat.Items))
		if err != nil {
			return nil, err
		}
		round.Category = cat.Name
		round.Word = cat.Items[item]

	case ModeQuestions:
		idx, err := alloc.Draw("question", len(questionPairs))
		if err != nil {
			return nil, err
		}
		round.Question = questionPairs[idx].Main
		round.OddQuestion = questionPairs[idx].Odd

	default:
		return nil, errUnknownMode
	}

	return round, nil
}

// revealSpeakingOrder generates one shared random order over all active
// players. Idempotent per round: a second call returns the existing order
// unchanged, so every client always sees the same single truth. The order
// covers everyone, not just innocents, so its length leaks nothing.
func revealSpeakingOrder(room Room) (RoomPatch, []string, error) {
	if room.Status != StatusPlaying || room.Round == nil {
		return RoomPatch{}, nil, errNoRoundActive
	}

	if len(room.Round.SpeakingOrder) > 0 {
		return RoomPatch{}, room.Round.SpeakingOrder, nil
	}

	ids := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		if p.Waiting {
			continue
		}
		ids = append(ids, p.ID)
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	round := room.Round.clone()
	round.SpeakingOrder = ids

	patch := RoomPatch{}
	patch.replaceRound(round)

	return patch, ids, nil
}

func startVoting(room Room) (RoomPatch, error) {
	if room.Status != StatusPlaying || room.Round == nil {
		return RoomPatch{}, errNoRoundActive
	}
	if room.Round.VotingStarted {
		return RoomPatch{}, errVotingStarted
	}

	round := room.Round.clone()
	round.Votes = []Vote{}
	round.VotingStarted = true

	patch := RoomPatch{}
	patch.replaceRound(round)

	return patch, nil
}

// submitVote records one vote per active player. The tally is deferred to
// the reveal, so clients only ever see a "votes so far" count.
func submitVote(room Room, voterID, targetID string) (RoomPatch, error) {
	if room.Status != StatusPlaying || room.Round == nil {
		return RoomPatch{}, errNoRoundActive
	}
	if !room.Round.VotingStarted || room.Round.VotesRevealed {
		return RoomPatch{}, errVotingNotStarted
	}

	voter, ok := room.player(voterID)
	if !ok || voter.Waiting {
		return RoomPatch{}, errPlayerNotFound
	}
	if _, ok := room.player(targetID); !ok {
		return RoomPatch{}, fmt.Errorf("vote target: %w", errPlayerNotFound)
	}

	for _, v := range room.Round.Votes {
		if v.VoterID == voterID {
			return RoomPatch{}, errDuplicateVote
		}
	}

	round := room.Round.clone()
	round.Votes = append(round.Votes, Vote{VoterID: voterID, TargetID: targetID})

	patch := RoomPatch{}
	patch.replaceRound(round)

	return patch, nil
}

// VoteResult is the deferred tally, computed only at reveal time.
type VoteResult struct {
	Counts         map[string]int `json:"counts"`
	MostVoted      string         `json:"mostVoted,omitempty"`
	Tie            bool           `json:"tie"`
	ImpostorCaught bool           `json:"impostorCaught"`
	ImpostorID     string         `json:"impostorId"`
}

func tallyVotes(room Room) *VoteResult {
	result := &VoteResult{
		Counts:     make(map[string]int),
		ImpostorID: room.ImpostorID,
	}
	if room.Round == nil {
		return result
	}

	for _, v := range room.Round.Votes {
		result.Counts[v.TargetID]++
	}

	max := 0
	var top []string
	for id, count := range result.Counts {
		switch {
		case count > max:
			max = count
			top = []string{id}
		case count == max:
			top = append(top, id)
		}
	}

	result.Tie = len(top) > 1
	if len(top) == 1 {
		result.MostVoted = top[0]
		result.ImpostorCaught = top[0] == room.ImpostorID
	}

	return result
}

func revealImpostor(room Room) (RoomPatch, error) {
	if room.Status != StatusPlaying || room.Round == nil {
		return RoomPatch{}, errNoRoundActive
	}
	if !room.Round.VotingStarted {
		return RoomPatch{}, errVotingNotStarted
	}
	if room.Round.VotesRevealed {
		return RoomPatch{}, nil
	}

	round := room.Round.clone()
	round.VotesRevealed = true

	patch := RoomPatch{}
	patch.replaceRound(round)

	return patch, nil
}

// returnToLobby is the only path out of a round. It also clears every
// waitingForNextRound flag, admitting players who queued mid-round.
func returnToLobby(room Room) (RoomPatch, error) {
	if room.Status != StatusPlaying {
		return RoomPatch{}, errNoRoundActive
	}

	players := append([]Player(nil), room.Players...)
	for i := range players {
		players[i].Waiting = false
	}

	status := StatusWaiting
	impostor := ""
	patch := RoomPatch{
		Status:     &status,
		ImpostorID: &impostor,
	}
	patch.replaceRound(nil)
	patch.replacePlayers(players)

	return patch, nil
}
