package service

import (
	"context"
	"errors"

	"github.com/MwangiRon/color-clash/game/engine"
)

// ErrRoomNotFound is returned by RoomDirectory implementations when the
// room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// GameService defines all game-related operations exposed to transports
type GameService interface {
	// StartGame creates the game for a room once it holds two players
	StartGame(ctx context.Context, roomID string) (*engine.GameView, error)

	// MakeMove validates and applies a single move
	MakeMove(ctx context.Context, roomID, userID string, position int, isPowerMove bool) (*engine.MoveOutcome, error)

	// ValidateMove dry-runs the same checks as MakeMove without mutating
	ValidateMove(ctx context.Context, roomID, userID string, position int, isPowerMove bool) (*engine.Verdict, error)

	// GetGameState returns a read-only snapshot of a room's game
	GetGameState(ctx context.Context, roomID string) (*engine.GameView, error)

	// GetMoveLog returns the append-only move log of a room's game
	GetMoveLog(ctx context.Context, roomID string) ([]engine.Move, error)

	// ListGames returns a summary of every stored game
	ListGames(ctx context.Context) ([]*GameSummary, error)

	// AbandonGame finishes a room's game without a winner
	AbandonGame(ctx context.Context, roomID string) error
}

// RoomPlayer is a seat in a room as reported by the room collaborator
type RoomPlayer struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// RoomRecord is the view of a room the engine needs before creating a
// game: its identifier, status, and seated players in join order.
type RoomRecord struct {
	RoomID  string       `json:"roomId"`
	Status  string       `json:"status"`
	Players []RoomPlayer `json:"players"`
}

// RoomDirectory is the room collaborator consulted before game creation
type RoomDirectory interface {
	Room(ctx context.Context, roomID string) (*RoomRecord, error)
}
