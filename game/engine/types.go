package engine

import (
	"sync"
	"time"

	"github.com/MwangiRon/color-clash/game/board"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"
)

// Player is one of the two participants of a game
type Player struct {
	UserID        string      `json:"userId"`
	Username      string      `json:"username"`
	Color         board.Color `json:"color"`
	PowerMoveUsed bool        `json:"powerMoveUsed"`
}

// Move is one entry of the append-only move log
type Move struct {
	UserID      string      `json:"userId"`
	Position    int         `json:"position"`
	Color       board.Color `json:"color"`
	IsPowerMove bool        `json:"isPowerMove"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Game is the authoritative game entity for one room. All fields are
// guarded by mu; use the methods rather than touching fields directly
// once the game is shared between goroutines.
type Game struct {
	GameID      string        `json:"gameId"`
	RoomID      string        `json:"roomId"`
	Board       []board.Color `json:"board"`
	Players     []Player      `json:"players"`
	CurrentTurn string        `json:"currentTurn"`
	Moves       []Move        `json:"moves"`
	Status      GameStatus    `json:"status"`
	Winner      string        `json:"winner,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	FinishedAt  *time.Time    `json:"finishedAt,omitempty"`

	mu sync.Mutex
}

// GameView is the read-only projection returned to clients. It carries
// the move count instead of the full log.
type GameView struct {
	GameID      string        `json:"gameId"`
	RoomID      string        `json:"roomId"`
	Board       []board.Color `json:"board"`
	CurrentTurn string        `json:"currentTurn"`
	Status      GameStatus    `json:"status"`
	Players     []Player      `json:"players"`
	MoveCount   int           `json:"moveCount"`
	Winner      string        `json:"winner,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	FinishedAt  *time.Time    `json:"finishedAt,omitempty"`
}

// MoveOutcome is the result of a successfully applied move, mirroring
// the wire shape the relay broadcasts to room members.
type MoveOutcome struct {
	GameOver bool          `json:"gameOver"`
	Board    []board.Color `json:"board"`

	// Set when the game continues
	CurrentTurn   string `json:"currentTurn,omitempty"`
	NextPlayer    string `json:"nextPlayer,omitempty"`
	PowerMoveUsed bool   `json:"powerMoveUsed"`

	// Set when the game ends
	Winner      string      `json:"winner,omitempty"`
	WinnerColor board.Color `json:"winnerColor,omitempty"`
	WinningLine []int       `json:"winningLine,omitempty"`
	Draw        bool        `json:"draw,omitempty"`
}

// Verdict is the result of a dry-run move validation
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
