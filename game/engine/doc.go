// Package engine provides the core game state machine for Color Clash.
//
// The engine package implements:
//   - The Game entity: board, players, turn, append-only move log
//   - Move validation and application (regular and power moves)
//   - Win and draw detection with terminal state transitions
//   - Typed rejections for every rule violation
//
// Core Types:
//
// Game is the authoritative per-room game entity. ApplyMove is the single
// mutating operation: it validates the move, writes the cell, appends to
// the move log, and either finishes the game or hands the turn to the
// other player. ValidateMove runs the identical precondition checks as a
// dry run, so the two entry points cannot drift apart.
//
// Concurrency:
//
// Each Game carries its own mutex. ApplyMove, ValidateMove, View, and
// Abandon serialize on it, so concurrent requests racing on the same room
// apply exactly one move per logical turn; the loser receives a turn or
// occupancy rejection instead of corrupting the board.
//
// Usage:
//
//	game := engine.NewGame(roomID, []engine.Player{
//		{UserID: "u1", Username: "alice"},
//		{UserID: "u2", Username: "bob"},
//	})
//
//	outcome, err := game.ApplyMove("u1", 5, false)
//	if err != nil {
//		var rej *engine.Rejection
//		if errors.As(err, &rej) {
//			fmt.Println("rejected:", rej.Reason)
//		}
//	}
//
// Game Rules:
//
// Players alternate placing their color on vacant cells of a 4x4 board;
// the creator plays red and always moves first. Each player may once per
// game spend a power move to flip a cell occupied by the opponent. The
// first color to occupy a full row, column, or diagonal wins; a full
// board with no winner is a draw.
package engine
