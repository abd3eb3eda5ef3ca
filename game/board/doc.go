// Package board provides the pure board logic for Color Clash.
//
// The board package implements:
//   - Position and coordinate mapping on the fixed 4x4 grid
//   - Orthogonal adjacency with edge clipping
//   - Win detection over the ten fixed winning patterns
//   - Hypothetical move evaluation (WouldWin)
//
// Core Types:
//
// Color is a cell value ("red" or "blue"); the zero Color marks a vacant
// cell and serializes as JSON null so boards round-trip as flat arrays of
// "red" | "blue" | null. A board is a plain []Color of length BoardSize.
//
// All functions in this package are side-effect free and operate on the
// board they are given without mutating it.
//
// Usage:
//
//	b := board.NewBoard()
//	b[0], b[1], b[2], b[3] = board.Red, board.Red, board.Red, board.Red
//
//	if winner := board.CheckWinner(b); winner != board.Empty {
//		fmt.Println("winner:", winner)
//	}
//
// Coordinate System:
//
// Cells are indexed 0..15 in row-major order: position = row*4 + col.
// Row 0 is the top of the board.
package board
