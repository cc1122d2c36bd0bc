/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

var (
	errDuplicateCode    = errors.New("room code already in use")
	errRoomNotFound     = errors.New("room not found")
	errPlayerNotFound   = errors.New("player not found")
	errEmptyPool        = errors.New("content pool has no items")
	errNotHost          = errors.New("only the host may do this")
	errRoundInProgress  = errors.New("a round is already in progress")
	errNoRoundActive    = errors.New("no round is active")
	errVotingNotStarted = errors.New("voting has not started")
	errVotingStarted    = errors.New("voting has already started")
	errDuplicateVote    = errors.New("player already voted this round")
	errUnknownMode      = errors.New("unknown game mode")
)

// InsufficientPlayersError reports why a round could not start, with
// counts the client can show verbatim.
type InsufficientPlayersError struct {
	Eligible     int
	Disconnected int
	Total        int
	Required     int
}

func (e *InsufficientPlayersError) Error() string {
	return fmt.Sprintf("need %d connected players to start, have %d (%d disconnected, %d total)",
		e.Required, e.Eligible, e.Disconnected, e.Total)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon())
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
