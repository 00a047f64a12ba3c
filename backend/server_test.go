package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/swaptoe/swaptoe/internal/config"
	"github.com/swaptoe/swaptoe/internal/engine"
	"github.com/swaptoe/swaptoe/internal/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, mode string) (*server, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigMode, mode)
	cfg.Set(config.ConfigSearchTimeBudget, 20*time.Millisecond)
	srv, err := newServer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.hub.Run(ctx) }()
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t, "pvp")
	resp, err := http.Get(ts.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPlaceThenRejectOccupied(t *testing.T) {
	_, ts := newTestServer(t, "pvp")

	resp, body := postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 1, Col: 1}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, game.CodeApplied, body["code"])

	resp, body = postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 1, Col: 1}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, game.CodeCellOccupied, body["code"])
	require.NotEmpty(t, body["error"])
}

func TestSwapRejectedWithReason(t *testing.T) {
	_, ts := newTestServer(t, "pvp")
	postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 0, Col: 0}})
	postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 2, Col: 2}})

	resp, body := postJSON(t, ts.URL+"/api/swap", swapRequest{A: engine.Pos{Row: 0, Col: 0}, B: engine.Pos{Row: 2, Col: 2}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, game.CodeNotAdjacent, body["code"])
}

func TestStartWithPreset(t *testing.T) {
	srv, ts := newTestServer(t, "pvp")
	resp, _ := postJSON(t, ts.URL+"/api/start", startRequest{Preset: "5x5", Mode: game.ModePvC, ComputerMark: engine.X})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := srv.controller.Snapshot()
	require.Len(t, snap.Grid, 5)
	require.Equal(t, game.ModePvC, snap.Setup.Mode)
	require.True(t, snap.ComputerTurn)

	resp, body := postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 0, Col: 0}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, game.CodeNotYourTurn, body["code"])
}

func TestStartRejectsBadSettings(t *testing.T) {
	srv, ts := newTestServer(t, "pvp")
	bad := engine.Settings{Rows: 3, Cols: 20, WinLength: 3}
	resp, body := postJSON(t, ts.URL+"/api/start", startRequest{Settings: &bad})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, game.CodeInvalidSettings, body["code"])
	require.Len(t, srv.controller.Snapshot().Grid, 3)

	resp, body = postJSON(t, ts.URL+"/api/start", startRequest{Preset: "19x19"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, game.CodeInvalidSettings, body["code"])
}

func TestDrawThenGameOver(t *testing.T) {
	_, ts := newTestServer(t, "pvp")
	resp, _ := postJSON(t, ts.URL+"/api/draw", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 0, Col: 0}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, game.CodeGameOver, body["code"])

	resp, _ = postJSON(t, ts.URL+"/api/restart", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 0, Col: 0}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSettingsUpdate(t *testing.T) {
	srv, ts := newTestServer(t, "pvp")
	tuning := srv.store.Get()
	tuning.Search.MaxDepthSmall = 3
	resp, _ := postJSON(t, ts.URL+"/api/settings", tuning)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, srv.store.Get().Search.MaxDepthSmall)

	tuning.Search.TTMaxEntries = 0
	resp, body := postJSON(t, ts.URL+"/api/settings", tuning)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid-tuning", body["code"])
	require.Equal(t, 3, srv.store.Get().Search.MaxDepthSmall)
}

func TestTTCacheEndpoints(t *testing.T) {
	_, ts := newTestServer(t, "pvc")
	postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 0, Col: 0}})

	resp, err := http.Get(ts.URL + "/api/cache/tt")
	require.NoError(t, err)
	var status ttCacheStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	require.Positive(t, status.Capacity)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/cache/tt", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebsocketReceivesStatusAndMoves(t *testing.T) {
	srv, ts := newTestServer(t, "pvp")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg wsMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "status", msg.Type)
	require.Eventually(t, srv.hub.HasClients, time.Second, 10*time.Millisecond)

	postJSON(t, ts.URL+"/api/place", placeRequest{Cell: engine.Pos{Row: 2, Col: 0}})
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "move", msg.Type)

	var event game.MoveEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	require.Equal(t, engine.X, event.Mover)
	require.Equal(t, engine.PlaceAt(engine.Pos{Row: 2, Col: 0}), event.Move)

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "request_status"}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "status", msg.Type)
}
