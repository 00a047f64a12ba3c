package main

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type frame struct {
	kind int
	data []byte
}

type fakeConn struct {
	mu     sync.Mutex
	frames []frame
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame{kind: kind, data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) snapshot() []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frame(nil), f.frames...)
}

func TestWritePumpPingsWhenIdleAndClosesWithQueue(t *testing.T) {
	conn := &fakeConn{}
	client := &Client{send: make(chan []byte, 4)}
	done := make(chan error, 1)
	go func() { done <- client.writePump(conn, 5*time.Millisecond) }()

	client.send <- []byte(`{"type":"status"}`)
	require.Eventually(t, func() bool {
		for _, f := range conn.snapshot() {
			var msg wsMessage
			if json.Unmarshal(f.data, &msg) == nil && msg.Type == "ping" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	close(client.send)
	require.NoError(t, <-done)

	frames := conn.snapshot()
	require.Equal(t, `{"type":"status"}`, string(frames[0].data))
	last := frames[len(frames)-1]
	require.Equal(t, websocket.CloseMessage, last.kind)

	var ping wsMessage
	require.NoError(t, json.Unmarshal(frames[1].data, &ping))
	require.Equal(t, "ping", ping.Type)
	var hb heartbeat
	require.NoError(t, json.Unmarshal(ping.Payload, &hb))
	require.Equal(t, 1, hb.Seq)
}
