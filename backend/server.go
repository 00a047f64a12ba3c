package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swaptoe/swaptoe/internal/config"
	"github.com/swaptoe/swaptoe/internal/engine"
	"github.com/swaptoe/swaptoe/internal/game"
)

type server struct {
	controller *game.Controller
	hub        *Hub
	store      *config.SettingsStore
	heartbeat  time.Duration
}

type StatusResponse struct {
	Game    game.Snapshot       `json:"game"`
	History []game.HistoryEntry `json:"history"`
	Tuning  config.Tuning       `json:"tuning"`
}

type startRequest struct {
	Preset       string           `json:"preset"`
	Settings     *engine.Settings `json:"settings"`
	Mode         game.Mode        `json:"mode"`
	ComputerMark engine.Mark      `json:"computer_mark"`
}

type placeRequest struct {
	Cell engine.Pos `json:"cell"`
}

type swapRequest struct {
	A engine.Pos `json:"a"`
	B engine.Pos `json:"b"`
}

type moveResponse struct {
	Code  string        `json:"code"`
	Error string        `json:"error,omitempty"`
	Game  game.Snapshot `json:"game"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ttCacheStatusResponse struct {
	Count    int            `json:"count"`
	Capacity int            `json:"capacity"`
	Usage    float64        `json:"usage"`
	Stats    engine.TTStats `json:"stats"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.status())
	})
	r.Get("/api/presets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, game.Presets)
	})
	r.Post("/api/start", s.handleStart)
	r.Post("/api/restart", func(w http.ResponseWriter, r *http.Request) {
		s.controller.Restart()
		writeJSON(w, http.StatusOK, s.status())
	})
	r.Post("/api/place", s.handlePlace)
	r.Post("/api/swap", s.handleSwap)
	r.Post("/api/draw", func(w http.ResponseWriter, r *http.Request) {
		s.writeMoveResult(w, s.controller.AgreeDraw())
	})
	r.Post("/api/settings", s.handleSettings)
	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.ttCacheStatus())
	})
	r.Delete("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		s.controller.ClearTable()
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})
	r.Get("/ws/", s.serveWS)
	return r
}

func (s *server) status() StatusResponse {
	return StatusResponse{
		Game:    s.controller.Snapshot(),
		History: s.controller.History().All(),
		Tuning:  s.store.Get(),
	}
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload startRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-payload", err)
		return
	}
	setup := s.controller.Setup()
	switch {
	case payload.Settings != nil:
		setup.Settings = *payload.Settings
	case payload.Preset != "":
		settings, err := game.PresetByName(payload.Preset)
		if err != nil {
			writeError(w, http.StatusBadRequest, game.ReasonCode(err), err)
			return
		}
		setup.Settings = settings
	}
	if payload.Mode != "" {
		setup.Mode = payload.Mode
	}
	if payload.ComputerMark != engine.Empty {
		setup.ComputerMark = payload.ComputerMark
	}
	if err := s.controller.Configure(setup); err != nil {
		writeError(w, http.StatusBadRequest, game.ReasonCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

func (s *server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var payload placeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-payload", err)
		return
	}
	s.writeMoveResult(w, s.controller.Place(payload.Cell))
}

func (s *server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var payload swapRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-payload", err)
		return
	}
	s.writeMoveResult(w, s.controller.Swap(payload.A, payload.B))
}

// writeMoveResult answers a rejected request with 409 and its reason code.
func (s *server) writeMoveResult(w http.ResponseWriter, err error) {
	resp := moveResponse{Code: game.ReasonCode(err), Game: s.controller.Snapshot()}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleSettings(w http.ResponseWriter, r *http.Request) {
	payload := s.store.Get()
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-payload", err)
		return
	}
	if err := s.store.Update(payload); err != nil {
		code := "error"
		if errors.Is(err, config.ErrInvalidTuning) {
			code = "invalid-tuning"
		}
		writeError(w, http.StatusBadRequest, code, err)
		return
	}
	s.controller.Retune(payload.Search, payload.Heuristics)
	s.hub.SettingsChanged(payload)
	writeJSON(w, http.StatusOK, s.status())
}

func (s *server) ttCacheStatus() ttCacheStatusResponse {
	stats, count, capacity := s.controller.TableStats()
	usage := 0.0
	if capacity > 0 {
		usage = float64(count) / float64(capacity)
	}
	return ttCacheStatusResponse{Count: count, Capacity: capacity, Usage: usage, Stats: stats}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}
