package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/swaptoe/swaptoe/internal/game"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws-upgrade-failed")
		return
	}
	client := &Client{hub: s.hub, send: make(chan []byte, 32)}
	s.hub.Register(client)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.status())})

	go func() {
		defer conn.Close()
		if err := client.writePump(conn, s.heartbeat); err != nil {
			log.Debug().Err(err).Msg("ws-write-failed")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.status())})
		case "request_history":
			client.sendJSON(wsMessage{Type: "history", Payload: mustMarshal(historyResponse{History: s.controller.History().All()})})
		}
	}
}

type historyResponse struct {
	History []game.HistoryEntry `json:"history"`
}
