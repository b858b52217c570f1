// Package httpapi exposes the three JSON room-lifecycle endpoints and the
// websocket upgrade, wired together behind gorilla/mux.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/scythe504/skribbl-roomrt/internal/game"
	"github.com/scythe504/skribbl-roomrt/internal/health"
	"github.com/scythe504/skribbl-roomrt/internal/transport"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

type Server struct {
	Store    *game.Store
	Engine   *game.Engine
	Health   *health.Checker
	Transport *transport.Handler
}

func NewServer(store *game.Store, engine *game.Engine, checker *health.Checker) *Server {
	return &Server{
		Store:     store,
		Engine:    engine,
		Health:    checker,
		Transport: transport.NewHandler(engine),
	}
}

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/createRoom", s.handleCreateRoom).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/joinRoom", s.handleJoinRoom).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/leaveRoom", s.handleLeaveRoom).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/ws", s.Transport.ServeWS)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[httpapi] encode response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Health.Health(r.Context()))
}

type createRoomRequest struct {
	Username      string `json:"username"`
	RoundDuration int    `json:"round_duration"`
}

type joinRoomRequest struct {
	RoomCode string `json:"room_code"`
	Username string `json:"username"`
}

type leaveRoomRequest struct {
	RoomCode string `json:"room_code"`
	PlayerId string `json:"player_id"`
}

type roomResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Room    game.PublicRoom   `json:"room,omitempty"`
	Player  game.PublicPlayer `json:"player,omitempty"`
}

type simpleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: "username is required"})
		return
	}
	duration := req.RoundDuration
	if duration <= 0 {
		duration = game.DefaultRoundSeconds
	}

	code := s.Store.GenerateRoomCode()
	p := &game.Player{Id: newId(), Username: req.Username, State: game.PlayerSpectator, IsConnected: false}
	room := s.Store.CreateRoom(code, duration, game.DefaultMaxPlayers, p.Id)
	if err := s.Store.AddPlayer(code, p); err != nil {
		s.Store.DeleteRoom(code)
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: err.Error()})
		return
	}

	room = s.Store.GetRoom(code)
	writeJSON(w, http.StatusCreated, roomResponse{
		Success: true,
		Message: "room created",
		Room:    room.ToPublic(),
		Player:  p.ToPublic(),
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: "invalid request body"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.RoomCode))
	if !roomCodePattern.MatchString(code) || strings.TrimSpace(req.Username) == "" {
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: "room_code must be 6 alphanumeric characters and username is required"})
		return
	}

	room := s.Store.GetRoom(code)
	if room == nil {
		writeJSON(w, http.StatusNotFound, simpleResponse{Message: "room not found"})
		return
	}

	p := &game.Player{Id: newId(), Username: req.Username, State: game.PlayerSpectator, IsConnected: false}
	if err := s.Store.AddPlayer(code, p); err != nil {
		status := http.StatusBadRequest
		if err == game.ErrRoomNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, simpleResponse{Message: err.Error()})
		return
	}

	room = s.Store.GetRoom(code)
	writeJSON(w, http.StatusOK, roomResponse{
		Success: true,
		Message: "joined room",
		Room:    room.ToPublic(),
		Player:  p.ToPublic(),
	})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req leaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: "invalid request body"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.RoomCode))
	if !roomCodePattern.MatchString(code) {
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: "room_code must be 6 alphanumeric characters"})
		return
	}
	if _, err := uuid.Parse(req.PlayerId); err != nil {
		writeJSON(w, http.StatusBadRequest, simpleResponse{Message: "player_id must be a valid UUID"})
		return
	}

	if s.Store.GetRoom(code) == nil {
		writeJSON(w, http.StatusNotFound, simpleResponse{Message: "room not found"})
		return
	}

	if err := s.Engine.Leave(code, req.PlayerId); err != nil {
		status := http.StatusBadRequest
		switch err {
		case game.ErrRoomNotFound:
			status = http.StatusNotFound
		case game.ErrPlayerNotFound:
			status = http.StatusForbidden
		}
		writeJSON(w, status, simpleResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, simpleResponse{Success: true, Message: "left room"})
}

func newId() string {
	return uuid.NewString()
}
