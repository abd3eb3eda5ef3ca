package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log15 "github.com/inconshreveable/log15/v3"

	"github.com/MwangiRon/color-clash/game/engine"
	"github.com/MwangiRon/color-clash/game/service"
	"github.com/MwangiRon/color-clash/room"
	"github.com/MwangiRon/color-clash/transport/websocket"
	"github.com/MwangiRon/color-clash/user"
)

// Server represents the REST API server
type Server struct {
	users   *user.Registry
	rooms   *room.Manager
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     log15.Logger
}

// NewServer creates a new API server
func NewServer(users *user.Registry, rooms *room.Manager, gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		users:   users,
		rooms:   rooms,
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log15.New("component", "api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Users
	api.HandleFunc("/users/register", s.handleRegisterUser).Methods("POST")
	api.HandleFunc("/users/login", s.handleLoginUser).Methods("POST")
	api.HandleFunc("/users", s.handleListUsers).Methods("GET")
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods("GET")

	// Rooms
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/rooms/{id}/join", s.handleJoinRoom).Methods("POST")
	api.HandleFunc("/rooms/{id}/leave", s.handleLeaveRoom).Methods("POST")

	// Games
	api.HandleFunc("/games/start", s.handleStartGame).Methods("POST")
	api.HandleFunc("/games/move", s.handleMakeMove).Methods("POST")
	api.HandleFunc("/games/validate-move", s.handleValidateMove).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{roomId}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/games/{roomId}/moves", s.handleGetMoveLog).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.hub.ServeWS)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondRejection maps a service error to an HTTP status. Rule
// rejections carry their reason verbatim; anything else is an internal
// fault and stays opaque to the caller.
func (s *Server) respondRejection(w http.ResponseWriter, err error) {
	var rej *engine.Rejection
	if !errors.As(err, &rej) {
		s.log.Error("internal error", "err", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusBadRequest
	switch rej.Kind {
	case engine.KindNotFound:
		status = http.StatusNotFound
	case engine.KindConflict:
		status = http.StatusConflict
	}
	respondError(w, status, rej.Reason)
}

// User Handlers

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.users.Register(req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLoginUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.users.Login(req.Username)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := s.users.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(users),
		"users": users,
	})
}

// Room Handlers

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	rm := s.rooms.Create(req.UserID, req.Username)
	respondJSON(w, http.StatusCreated, rm)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	var rooms []*room.Room
	if r.URL.Query().Get("available") == "true" {
		rooms = s.rooms.Available()
	} else {
		rooms = s.rooms.List()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Room not found")
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	var req struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	rm, err := s.rooms.Join(roomID, req.UserID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, room.ErrRoomFull):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, rm)
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	deleted, err := s.rooms.Leave(roomID, req.UserID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.service.AbandonGame(r.Context(), roomID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"roomDeleted": deleted,
	})
}

// Game Handlers

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.service.StartGame(r.Context(), req.RoomID)
	if err != nil {
		s.respondRejection(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(req.RoomID, websocket.Event{Type: "GAME_STARTED", Payload: map[string]interface{}{
			"gameId":      view.GameID,
			"board":       view.Board,
			"currentTurn": view.CurrentTurn,
			"players":     view.Players,
		}}, nil)
	}

	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID      string `json:"roomId"`
		UserID      string `json:"userId"`
		Position    *int   `json:"position"`
		IsPowerMove bool   `json:"isPowerMove"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		respondError(w, http.StatusBadRequest, "roomId, userId, and position are required")
		return
	}

	outcome, err := s.service.MakeMove(r.Context(), req.RoomID, req.UserID, *req.Position, req.IsPowerMove)
	if err != nil {
		s.respondRejection(w, err)
		return
	}

	// Broadcast to WebSocket clients in the room
	if s.hub != nil {
		s.hub.BroadcastToRoom(req.RoomID, websocket.Event{Type: "MOVE_MADE", Payload: map[string]interface{}{
			"userId":      req.UserID,
			"position":    *req.Position,
			"isPowerMove": req.IsPowerMove,
			"board":       outcome.Board,
			"currentTurn": outcome.CurrentTurn,
			"gameOver":    outcome.GameOver,
		}}, nil)

		if outcome.GameOver {
			s.hub.BroadcastToRoom(req.RoomID, websocket.Event{Type: "GAME_OVER", Payload: map[string]interface{}{
				"winner":      outcome.Winner,
				"winnerColor": outcome.WinnerColor,
				"winningLine": outcome.WinningLine,
				"draw":        outcome.Draw,
				"board":       outcome.Board,
			}}, nil)
		}
	}

	if outcome.GameOver {
		s.rooms.UpdateStatus(req.RoomID, room.StatusFinished)
	}

	respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleValidateMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID      string `json:"roomId"`
		UserID      string `json:"userId"`
		Position    *int   `json:"position"`
		IsPowerMove bool   `json:"isPowerMove"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		respondError(w, http.StatusBadRequest, "roomId, userId, and position are required")
		return
	}

	verdict, err := s.service.ValidateMove(r.Context(), req.RoomID, req.UserID, *req.Position, req.IsPowerMove)
	if err != nil {
		s.respondRejection(w, err)
		return
	}

	respondJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetGameState(r.Context(), mux.Vars(r)["roomId"])
	if err != nil {
		s.respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetMoveLog(w http.ResponseWriter, r *http.Request) {
	moves, err := s.service.GetMoveLog(r.Context(), mux.Vars(r)["roomId"])
	if err != nil {
		s.respondRejection(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(moves),
		"moves": moves,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
