package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/MwangiRon/color-clash/game/board"
)

// NewGame creates a game for a room from its two seated players. Colors
// are assigned by seat order regardless of what the caller supplied: the
// first player is always red and moves first, the second is always blue.
func NewGame(roomID string, players []Player) *Game {
	seated := make([]Player, 2)
	seated[0] = Player{UserID: players[0].UserID, Username: players[0].Username, Color: board.Red}
	seated[1] = Player{UserID: players[1].UserID, Username: players[1].Username, Color: board.Blue}

	return &Game{
		GameID:      uuid.NewString(),
		RoomID:      roomID,
		Board:       board.NewBoard(),
		Players:     seated,
		CurrentTurn: seated[0].UserID,
		Moves:       []Move{},
		Status:      StatusActive,
		CreatedAt:   time.Now(),
	}
}

// playerByID returns the index of the player with the given user ID,
// or -1 if they are not part of this game.
func (g *Game) playerByID(userID string) int {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return i
		}
	}
	return -1
}

// playerByColor returns the index of the player holding color
func (g *Game) playerByColor(color board.Color) int {
	for i := range g.Players {
		if g.Players[i].Color == color {
			return i
		}
	}
	return -1
}

// evaluateMove runs every precondition for a move, in order, without
// mutating anything. It returns the mover's player index on success.
// ApplyMove and ValidateMove both go through this single evaluator so
// their rules cannot drift apart.
func (g *Game) evaluateMove(userID string, position int, isPowerMove bool) (int, *Rejection) {
	if g.Status == StatusFinished {
		return -1, reject(KindConflict, "Game is already finished")
	}
	if g.CurrentTurn != userID {
		return -1, reject(KindTurn, "Not your turn")
	}
	idx := g.playerByID(userID)
	if idx < 0 {
		return -1, reject(KindNotFound, "Player not found in game")
	}
	if !board.IsValidPosition(position) {
		return -1, reject(KindValidation, "Position must be between 0 and 15")
	}

	player := &g.Players[idx]
	if isPowerMove {
		if player.PowerMoveUsed {
			return -1, reject(KindConflict, "Power move already used")
		}
		if g.Board[position] == board.Empty || g.Board[position] == player.Color {
			return -1, reject(KindRuleViolation, "Power move must flip an opponent piece")
		}
	} else {
		if g.Board[position] != board.Empty {
			return -1, reject(KindConflict, "Position already occupied")
		}
	}

	return idx, nil
}

// ApplyMove validates and applies a single move. The cell write and log
// append happen only after every precondition passes, so a rejected move
// leaves the game untouched. Terminal conditions are evaluated in order:
// win, then draw, then turn handoff.
func (g *Game) ApplyMove(userID string, position int, isPowerMove bool) (*MoveOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx, rej := g.evaluateMove(userID, position, isPowerMove)
	if rej != nil {
		return nil, rej
	}

	player := &g.Players[idx]
	g.Board[position] = player.Color
	if isPowerMove {
		player.PowerMoveUsed = true
	}
	g.Moves = append(g.Moves, Move{
		UserID:      userID,
		Position:    position,
		Color:       player.Color,
		IsPowerMove: isPowerMove,
		Timestamp:   time.Now(),
	})

	if winner := board.CheckWinner(g.Board); winner != board.Empty {
		now := time.Now()
		g.Status = StatusFinished
		g.Winner = g.Players[g.playerByColor(winner)].UserID
		g.FinishedAt = &now

		return &MoveOutcome{
			GameOver:      true,
			Board:         g.boardCopy(),
			Winner:        g.Winner,
			WinnerColor:   winner,
			WinningLine:   board.WinningPattern(g.Board),
			PowerMoveUsed: player.PowerMoveUsed,
		}, nil
	}

	if board.IsFull(g.Board) {
		now := time.Now()
		g.Status = StatusFinished
		g.FinishedAt = &now

		return &MoveOutcome{
			GameOver:      true,
			Draw:          true,
			Board:         g.boardCopy(),
			PowerMoveUsed: player.PowerMoveUsed,
		}, nil
	}

	next := &g.Players[1-idx]
	g.CurrentTurn = next.UserID

	return &MoveOutcome{
		GameOver:      false,
		Board:         g.boardCopy(),
		CurrentTurn:   g.CurrentTurn,
		NextPlayer:    next.Username,
		PowerMoveUsed: player.PowerMoveUsed,
	}, nil
}

// ValidateMove is the dry-run counterpart of ApplyMove: the identical
// precondition checks with no mutation and no log append.
func (g *Game) ValidateMove(userID string, position int, isPowerMove bool) Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, rej := g.evaluateMove(userID, position, isPowerMove); rej != nil {
		return Verdict{Valid: false, Reason: rej.Reason}
	}
	return Verdict{Valid: true}
}

// Abandon finishes the game without a winner. It is invoked when the
// room disbands while the game is still active; finishing an already
// finished game is a no-op.
func (g *Game) Abandon() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status == StatusFinished {
		return
	}
	now := time.Now()
	g.Status = StatusFinished
	g.FinishedAt = &now
}

// View returns a consistent read-only snapshot of the game
func (g *Game) View() *GameView {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := make([]Player, len(g.Players))
	copy(players, g.Players)

	return &GameView{
		GameID:      g.GameID,
		RoomID:      g.RoomID,
		Board:       g.boardCopy(),
		CurrentTurn: g.CurrentTurn,
		Status:      g.Status,
		Players:     players,
		MoveCount:   len(g.Moves),
		Winner:      g.Winner,
		CreatedAt:   g.CreatedAt,
		FinishedAt:  g.FinishedAt,
	}
}

// MoveLog returns a copy of the append-only move log
func (g *Game) MoveLog() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := make([]Move, len(g.Moves))
	copy(moves, g.Moves)
	return moves
}

// IsFinished reports whether the game has reached its terminal state
func (g *Game) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Status == StatusFinished
}

// FinishedBefore reports whether the game is finished and its finish
// timestamp is older than cutoff. Used by the store's retention sweep.
func (g *Game) FinishedBefore(cutoff time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Status == StatusFinished && g.FinishedAt != nil && g.FinishedAt.Before(cutoff)
}

// boardCopy snapshots the board; callers hold g.mu
func (g *Game) boardCopy() []board.Color {
	b := make([]board.Color, len(g.Board))
	copy(b, g.Board)
	return b
}
