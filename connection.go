/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const maxMessageSize = 4096

// Client is one persistent connection. playerID stays empty until the
// first join message announces an identity; lastAck records the most
// recent heartbeat acknowledgment as unix nanos.
type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	lastAck  atomic.Int64
}

func newClient(conn *websocket.Conn) *Client {
	c := &Client{
		conn: conn,
		send: make(chan any, 16),
	}
	c.lastAck.Store(time.Now().UnixNano())
	return c
}

// readPump decodes client messages and hands them to the hub mailbox.
// Any read failure, malformed frame included, ends the pump; the hub then
// treats the player exactly as if heartbeats had stopped.
func (c *Client) readPump(h *Hub, cfg *Config) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.lastAck.Store(time.Now().UnixNano())
		return c.conn.SetReadDeadline(time.Now().Add(cfg.pongTimeout))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join", "select_mode", "start_round", "speaking_order",
			"start_voting", "vote", "reveal", "return_lobby", "leave", "resync":
			select {
			case h.actions <- actionRequest{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

// writePump drains the send channel and keeps the heartbeat going.
func (c *Client) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
