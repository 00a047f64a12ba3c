package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/swaptoe/swaptoe/internal/config"
	"github.com/swaptoe/swaptoe/internal/engine"
	"github.com/swaptoe/swaptoe/internal/game"
)

// Hub fans game and search events out to websocket clients. Publishing
// never blocks; events are dropped when a channel is full.
type Hub struct {
	mu                sync.Mutex
	clients           map[*Client]struct{}
	broadcastMove     chan game.MoveEvent
	broadcastPass     chan game.PassEvent
	broadcastReset    chan game.ResetEvent
	broadcastSettings chan config.Tuning
	broadcastSearch   chan engine.DepthReport
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:           make(map[*Client]struct{}),
		broadcastMove:     make(chan game.MoveEvent, 32),
		broadcastPass:     make(chan game.PassEvent, 8),
		broadcastReset:    make(chan game.ResetEvent, 8),
		broadcastSettings: make(chan config.Tuning, 8),
		broadcastSearch:   make(chan engine.DepthReport, 32),
	}
}

func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-h.broadcastMove:
			h.broadcast("move", payload)
		case payload := <-h.broadcastPass:
			h.broadcast("pass", payload)
		case payload := <-h.broadcastReset:
			h.broadcast("reset", payload)
		case payload := <-h.broadcastSettings:
			h.broadcast("settings", payload)
		case payload := <-h.broadcastSearch:
			h.broadcast("search", payload)
		}
	}
}

func (h *Hub) broadcast(kind string, payload any) {
	msg := wsMessage{Type: kind, Payload: mustMarshal(payload)}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.sendJSON(msg)
	}
}

func publish[T any](ch chan T, kind string, payload T) {
	select {
	case ch <- payload:
	default:
		log.Warn().Str("type", kind).Msg("hub-event-dropped")
	}
}

func (h *Hub) MovePlayed(e game.MoveEvent) {
	publish(h.broadcastMove, "move", e)
}

func (h *Hub) TurnPassed(e game.PassEvent) {
	publish(h.broadcastPass, "pass", e)
}

func (h *Hub) GameReset(e game.ResetEvent) {
	publish(h.broadcastReset, "reset", e)
}

func (h *Hub) DepthCompleted(r engine.DepthReport) {
	if !h.HasClients() {
		return
	}
	publish(h.broadcastSearch, "search", r)
}

func (h *Hub) SettingsChanged(t config.Tuning) {
	publish(h.broadcastSettings, "settings", t)
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
