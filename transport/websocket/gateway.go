package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	log15 "github.com/inconshreveable/log15/v3"

	"github.com/MwangiRon/color-clash/game/engine"
	"github.com/MwangiRon/color-clash/game/service"
	"github.com/MwangiRon/color-clash/room"
	"github.com/MwangiRon/color-clash/user"
)

// Gateway dispatches inbound client envelopes to the user registry, the
// room manager, and the game service, and relays the results back out:
// direct replies to the acting client, broadcasts to its room.
type Gateway struct {
	users *user.Registry
	rooms *room.Manager
	games service.GameService
	log   log15.Logger
}

// NewGateway creates a gateway over the given collaborators
func NewGateway(users *user.Registry, rooms *room.Manager, games service.GameService) *Gateway {
	return &Gateway{
		users: users,
		rooms: rooms,
		games: games,
		log:   log15.New("component", "gateway"),
	}
}

// Handle dispatches one inbound envelope
func (g *Gateway) Handle(ctx context.Context, c *Client, env Envelope) {
	switch env.Type {
	case "REGISTER_USER":
		g.handleRegisterUser(c, env.Payload)
	case "LOGIN_USER":
		g.handleLoginUser(c, env.Payload)
	case "CREATE_ROOM":
		g.handleCreateRoom(c)
	case "JOIN_ROOM":
		g.handleJoinRoom(c, env.Payload)
	case "LEAVE_ROOM":
		g.handleLeaveRoom(ctx, c)
	case "START_GAME":
		g.handleStartGame(ctx, c, env.Payload)
	case "MAKE_MOVE":
		g.handleMakeMove(ctx, c, env.Payload)
	case "GET_GAME_STATE":
		g.handleGetGameState(ctx, c, env.Payload)
	case "PING":
		c.Send(Event{Type: "PONG", Payload: map[string]string{"timestamp": time.Now().Format(time.RFC3339)}})
	default:
		g.log.Warn("unknown message type", "type", env.Type)
		c.SendError("Unknown message type: " + env.Type)
	}
}

// Disconnected cleans up after a dropped connection: the user goes
// offline and implicitly leaves their room, which abandons an active
// game the same way an explicit LEAVE_ROOM would.
func (g *Gateway) Disconnected(c *Client) {
	if c.UserID != "" {
		g.users.SetOnline(c.UserID, false)
	}
	if c.RoomID == "" {
		return
	}

	roomID := c.RoomID
	c.RoomID = ""

	if _, err := g.rooms.Leave(roomID, c.UserID); err != nil {
		return
	}
	g.games.AbandonGame(context.Background(), roomID)
	c.BroadcastToRoom(roomID, Event{Type: "PLAYER_LEFT", Payload: map[string]string{
		"userId":   c.UserID,
		"username": c.Username,
	}}, c)

	g.log.Info("client left room on disconnect", "user", c.UserID, "room", roomID)
}

func (g *Gateway) handleRegisterUser(c *Client, payload json.RawMessage) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError("Invalid payload")
		return
	}

	u, err := g.users.Register(req.Username)
	if err != nil {
		c.SendError(err.Error())
		return
	}

	c.UserID = u.UserID
	c.Username = u.Username
	g.users.SetOnline(u.UserID, true)

	g.log.Info("user registered", "user", u.UserID, "username", u.Username)
	c.Send(Event{Type: "USER_REGISTERED", Payload: map[string]string{
		"userId":   u.UserID,
		"username": u.Username,
	}})
}

func (g *Gateway) handleLoginUser(c *Client, payload json.RawMessage) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError("Invalid payload")
		return
	}

	u, err := g.users.Login(req.Username)
	if err != nil {
		c.SendError("User not found")
		return
	}

	c.UserID = u.UserID
	c.Username = u.Username
	g.users.SetOnline(u.UserID, true)

	c.Send(Event{Type: "USER_LOGGED_IN", Payload: map[string]string{
		"userId":   u.UserID,
		"username": u.Username,
	}})
}

func (g *Gateway) handleCreateRoom(c *Client) {
	if c.UserID == "" {
		c.SendError("Register before creating a room")
		return
	}

	r := g.rooms.Create(c.UserID, c.Username)
	c.RoomID = r.RoomID
	c.hub.JoinRoom(c, r.RoomID)

	g.log.Info("room created", "room", r.RoomID, "user", c.UserID)
	c.Send(Event{Type: "ROOM_CREATED", Payload: map[string]string{
		"roomId": r.RoomID,
		"status": r.Status,
	}})
}

func (g *Gateway) handleJoinRoom(c *Client, payload json.RawMessage) {
	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		c.SendError("roomId is required")
		return
	}
	if c.UserID == "" {
		c.SendError("Register before joining a room")
		return
	}

	r, err := g.rooms.Join(req.RoomID, c.UserID, c.Username)
	if err != nil {
		c.SendError(err.Error())
		return
	}

	c.RoomID = r.RoomID
	c.hub.JoinRoom(c, r.RoomID)

	g.log.Info("user joined room", "room", r.RoomID, "user", c.UserID)
	c.Send(Event{Type: "ROOM_JOINED", Payload: map[string]any{
		"roomId":  r.RoomID,
		"status":  r.Status,
		"players": r.Players,
	}})

	c.BroadcastToRoom(r.RoomID, Event{Type: "OPPONENT_JOINED", Payload: map[string]string{
		"userId":   c.UserID,
		"username": c.Username,
	}}, c)
}

func (g *Gateway) handleLeaveRoom(ctx context.Context, c *Client) {
	if c.RoomID == "" {
		c.SendError("Not in a room")
		return
	}

	roomID := c.RoomID
	if _, err := g.rooms.Leave(roomID, c.UserID); err != nil {
		c.SendError(err.Error())
		return
	}

	g.games.AbandonGame(ctx, roomID)

	c.BroadcastToRoom(roomID, Event{Type: "PLAYER_LEFT", Payload: map[string]string{
		"userId":   c.UserID,
		"username": c.Username,
	}}, c)

	c.hub.LeaveRoom(c, roomID)
	c.RoomID = ""

	g.log.Info("user left room", "room", roomID, "user", c.UserID)
	c.Send(Event{Type: "LEFT_ROOM", Payload: map[string]bool{"success": true}})
}

func (g *Gateway) handleStartGame(ctx context.Context, c *Client, payload json.RawMessage) {
	roomID := c.RoomID
	if len(payload) > 0 {
		var req struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(payload, &req); err == nil && req.RoomID != "" {
			roomID = req.RoomID
		}
	}
	if roomID == "" {
		c.SendError("roomId is required")
		return
	}

	view, err := g.games.StartGame(ctx, roomID)
	if err != nil {
		c.SendError(rejectionReason(err))
		return
	}

	c.BroadcastToRoom(roomID, Event{Type: "GAME_STARTED", Payload: map[string]any{
		"gameId":      view.GameID,
		"board":       view.Board,
		"currentTurn": view.CurrentTurn,
		"players":     view.Players,
	}}, nil)
}

func (g *Gateway) handleMakeMove(ctx context.Context, c *Client, payload json.RawMessage) {
	var req struct {
		RoomID      string `json:"roomId"`
		UserID      string `json:"userId"`
		Position    *int   `json:"position"`
		IsPowerMove bool   `json:"isPowerMove"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.Position == nil {
		c.SendError("roomId, userId, and position are required")
		return
	}
	if req.RoomID == "" {
		req.RoomID = c.RoomID
	}
	if req.UserID == "" {
		req.UserID = c.UserID
	}

	outcome, err := g.games.MakeMove(ctx, req.RoomID, req.UserID, *req.Position, req.IsPowerMove)
	if err != nil {
		// Only the offending client hears about a rejected move
		c.SendError(rejectionReason(err))
		return
	}

	c.BroadcastToRoom(req.RoomID, Event{Type: "MOVE_MADE", Payload: map[string]any{
		"userId":        req.UserID,
		"username":      c.Username,
		"position":      *req.Position,
		"isPowerMove":   req.IsPowerMove,
		"board":         outcome.Board,
		"currentTurn":   outcome.CurrentTurn,
		"nextPlayer":    outcome.NextPlayer,
		"powerMoveUsed": outcome.PowerMoveUsed,
		"gameOver":      outcome.GameOver,
		"winner":        outcome.Winner,
		"winnerColor":   outcome.WinnerColor,
		"draw":          outcome.Draw,
	}}, nil)

	if outcome.GameOver {
		g.rooms.UpdateStatus(req.RoomID, room.StatusFinished)
		c.BroadcastToRoom(req.RoomID, Event{Type: "GAME_OVER", Payload: map[string]any{
			"winner":      outcome.Winner,
			"winnerColor": outcome.WinnerColor,
			"winningLine": outcome.WinningLine,
			"draw":        outcome.Draw,
			"board":       outcome.Board,
		}}, nil)
	}
}

func (g *Gateway) handleGetGameState(ctx context.Context, c *Client, payload json.RawMessage) {
	roomID := c.RoomID
	if len(payload) > 0 {
		var req struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(payload, &req); err == nil && req.RoomID != "" {
			roomID = req.RoomID
		}
	}

	view, err := g.games.GetGameState(ctx, roomID)
	if err != nil {
		c.SendError(rejectionReason(err))
		return
	}

	c.Send(Event{Type: "GAME_STATE", Payload: view})
}

// rejectionReason surfaces a rule rejection's reason verbatim and hides
// anything else behind a generic message.
func rejectionReason(err error) string {
	var rej *engine.Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return "Internal server error"
}
