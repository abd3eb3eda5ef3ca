package board

import (
	"encoding/json"
	"strings"
)

// Color represents the occupant of a board cell
type Color string

const (
	Red   Color = "red"
	Blue  Color = "blue"
	Empty Color = ""

	// GridDim is the side length of the square board
	GridDim = 4

	// BoardSize is the total number of cells
	BoardSize = GridDim * GridDim
)

// winPatterns lists every winning line in evaluation order:
// 4 rows, 4 columns, then the two diagonals.
var winPatterns = [10][4]int{
	{0, 1, 2, 3},
	{4, 5, 6, 7},
	{8, 9, 10, 11},
	{12, 13, 14, 15},

	{0, 4, 8, 12},
	{1, 5, 9, 13},
	{2, 6, 10, 14},
	{3, 7, 11, 15},

	{0, 5, 10, 15},
	{3, 6, 9, 12},
}

// MarshalJSON encodes a vacant cell as null so boards serialize as
// flat arrays of "red" | "blue" | null.
func (c Color) MarshalJSON() ([]byte, error) {
	if c == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON decodes null back into the vacant cell value.
func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Color(s)
	return nil
}

// Opponent returns the other player's color
func (c Color) Opponent() Color {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return Empty
	}
}

// NewBoard returns an empty 16-cell board
func NewBoard() []Color {
	return make([]Color, BoardSize)
}

// PositionToCoord converts a position (0-15) to row and column
func PositionToCoord(position int) (row, col int) {
	return position / GridDim, position % GridDim
}

// CoordToPosition converts row and column to a position
func CoordToPosition(row, col int) int {
	return row*GridDim + col
}

// IsValidPosition reports whether position is on the board
func IsValidPosition(position int) bool {
	return position >= 0 && position < BoardSize
}

// AdjacentPositions returns the orthogonal neighbors of position,
// clipped at the board edges. Up to 4 positions are returned.
func AdjacentPositions(position int) []int {
	row, col := PositionToCoord(position)
	adjacent := make([]int, 0, 4)

	if row > 0 {
		adjacent = append(adjacent, CoordToPosition(row-1, col))
	}
	if row < GridDim-1 {
		adjacent = append(adjacent, CoordToPosition(row+1, col))
	}
	if col > 0 {
		adjacent = append(adjacent, CoordToPosition(row, col-1))
	}
	if col < GridDim-1 {
		adjacent = append(adjacent, CoordToPosition(row, col+1))
	}

	return adjacent
}

// CheckWinner scans the winning patterns in fixed order and returns the
// color occupying all four cells of the first fully uniform pattern, or
// Empty if no pattern is complete. At most one color can complete any
// given pattern because a cell holds a single color.
func CheckWinner(b []Color) Color {
	for _, pattern := range winPatterns {
		a := b[pattern[0]]
		if a == Empty {
			continue
		}
		if a == b[pattern[1]] && a == b[pattern[2]] && a == b[pattern[3]] {
			return a
		}
	}
	return Empty
}

// WouldWin reports whether placing color at position would complete a
// winning pattern for that color. The board is not mutated.
func WouldWin(b []Color, position int, color Color) bool {
	test := make([]Color, len(b))
	copy(test, b)
	test[position] = color
	return CheckWinner(test) == color
}

// WinningPattern returns the four positions of the first complete
// winning pattern, or nil if there is no winner.
func WinningPattern(b []Color) []int {
	for _, pattern := range winPatterns {
		a := b[pattern[0]]
		if a == Empty {
			continue
		}
		if a == b[pattern[1]] && a == b[pattern[2]] && a == b[pattern[3]] {
			return []int{pattern[0], pattern[1], pattern[2], pattern[3]}
		}
	}
	return nil
}

// IsFull reports whether every cell is occupied
func IsFull(b []Color) bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// Render returns the board as a 4-line debug grid, vacant cells shown
// as "-" and occupied cells as the color's first letter.
func Render(b []Color) string {
	var sb strings.Builder
	for row := 0; row < GridDim; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < GridDim; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			switch b[CoordToPosition(row, col)] {
			case Red:
				sb.WriteByte('R')
			case Blue:
				sb.WriteByte('B')
			default:
				sb.WriteByte('-')
			}
		}
	}
	return sb.String()
}
