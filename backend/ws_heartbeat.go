package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteTimeout     = 10 * time.Second
)

// wsWriter is the part of *websocket.Conn the write pump needs.
type wsWriter interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

type heartbeat struct {
	Seq int       `json:"seq"`
	At  time.Time `json:"at"`
}

// writePump drains the client's queue into conn. After idle without
// traffic it sends a "ping" hub message; when the hub closes the queue it
// sends a close frame and returns.
func (c *Client) writePump(conn wsWriter, idle time.Duration) error {
	if idle <= 0 {
		idle = wsIdlePingInterval
	}
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	lastWrite := time.Now()
	seq := 0

	write := func(kind int, data []byte) error {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return err
		}
		lastWrite = time.Now()
		return conn.WriteMessage(kind, data)
	}

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			if err := write(websocket.TextMessage, msg); err != nil {
				return err
			}
		case now := <-ticker.C:
			if now.Sub(lastWrite) < idle {
				continue
			}
			seq++
			ping := wsMessage{Type: "ping", Payload: mustMarshal(heartbeat{Seq: seq, At: now})}
			if err := write(websocket.TextMessage, mustMarshal(ping)); err != nil {
				return err
			}
		}
	}
}
