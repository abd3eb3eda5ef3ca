package engine

import (
	"errors"
	"testing"

	"github.com/MwangiRon/color-clash/game/board"
)

func createTestGame() *Game {
	return NewGame("room-1", []Player{
		{UserID: "user-red", Username: "alice"},
		{UserID: "user-blue", Username: "bob"},
	})
}

func mustApply(t *testing.T, g *Game, userID string, position int) *MoveOutcome {
	t.Helper()
	outcome, err := g.ApplyMove(userID, position, false)
	if err != nil {
		t.Fatalf("ApplyMove(%s, %d) failed: %v", userID, position, err)
	}
	return outcome
}

func rejectionKind(t *testing.T, err error) RejectionKind {
	t.Helper()
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("Expected a Rejection, got %T: %v", err, err)
	}
	return rej.Kind
}

func TestNewGame(t *testing.T) {
	g := createTestGame()

	if g.GameID == "" {
		t.Error("Expected a generated game ID")
	}
	if g.Status != StatusActive {
		t.Errorf("Expected status active, got %q", g.Status)
	}
	if len(g.Board) != board.BoardSize {
		t.Fatalf("Expected %d cells, got %d", board.BoardSize, len(g.Board))
	}
	for position, cell := range g.Board {
		if cell != board.Empty {
			t.Errorf("Expected empty cell at %d, got %q", position, cell)
		}
	}

	// Colors come from seat order, whatever the caller supplied
	if g.Players[0].Color != board.Red {
		t.Errorf("Expected first player to be red, got %q", g.Players[0].Color)
	}
	if g.Players[1].Color != board.Blue {
		t.Errorf("Expected second player to be blue, got %q", g.Players[1].Color)
	}
	if g.CurrentTurn != "user-red" {
		t.Errorf("Expected red to move first, got %q", g.CurrentTurn)
	}
}

func TestNewGameOverridesSuppliedColors(t *testing.T) {
	g := NewGame("room-1", []Player{
		{UserID: "a", Username: "alice", Color: board.Blue},
		{UserID: "b", Username: "bob", Color: board.Red},
	})

	if g.Players[0].Color != board.Red || g.Players[1].Color != board.Blue {
		t.Errorf("Expected seat order to decide colors, got %q/%q",
			g.Players[0].Color, g.Players[1].Color)
	}
}

func TestApplyMoveAlternatesTurns(t *testing.T) {
	g := createTestGame()

	outcome := mustApply(t, g, "user-red", 0)
	if outcome.GameOver {
		t.Fatal("Expected game to continue after one move")
	}
	if outcome.CurrentTurn != "user-blue" {
		t.Errorf("Expected turn to pass to blue, got %q", outcome.CurrentTurn)
	}
	if outcome.NextPlayer != "bob" {
		t.Errorf("Expected next player bob, got %q", outcome.NextPlayer)
	}
	if g.Board[0] != board.Red {
		t.Errorf("Expected red piece at 0, got %q", g.Board[0])
	}
	if len(g.Moves) != 1 {
		t.Errorf("Expected 1 logged move, got %d", len(g.Moves))
	}
}

func TestApplyMoveOutOfTurn(t *testing.T) {
	g := createTestGame()

	_, err := g.ApplyMove("user-blue", 0, false)
	if kind := rejectionKind(t, err); kind != KindTurn {
		t.Errorf("Expected turn rejection, got %q", kind)
	}
	if len(g.Moves) != 0 {
		t.Error("Expected rejected move to stay off the log")
	}
	if g.CurrentTurn != "user-red" {
		t.Errorf("Expected turn to stay with red, got %q", g.CurrentTurn)
	}
}

func TestApplyMoveUnknownUser(t *testing.T) {
	g := createTestGame()

	_, err := g.ApplyMove("stranger", 0, false)
	if err == nil {
		t.Fatal("Expected rejection for a user outside the game")
	}
	if g.Board[0] != board.Empty {
		t.Error("Expected board untouched after rejection")
	}
}

func TestApplyMoveInvalidPosition(t *testing.T) {
	g := createTestGame()

	for _, position := range []int{-1, 16, 99} {
		_, err := g.ApplyMove("user-red", position, false)
		if kind := rejectionKind(t, err); kind != KindValidation {
			t.Errorf("Position %d: expected validation rejection, got %q", position, kind)
		}
	}
}

func TestApplyMoveOccupiedPosition(t *testing.T) {
	g := createTestGame()
	mustApply(t, g, "user-red", 5)

	_, err := g.ApplyMove("user-blue", 5, false)
	if kind := rejectionKind(t, err); kind != KindConflict {
		t.Errorf("Expected conflict rejection, got %q", kind)
	}
	if g.Board[5] != board.Red {
		t.Errorf("Expected red piece to survive at 5, got %q", g.Board[5])
	}
}

func TestWinByRow(t *testing.T) {
	g := createTestGame()

	mustApply(t, g, "user-red", 0)
	mustApply(t, g, "user-blue", 4)
	mustApply(t, g, "user-red", 1)
	mustApply(t, g, "user-blue", 5)
	mustApply(t, g, "user-red", 2)
	mustApply(t, g, "user-blue", 6)

	outcome := mustApply(t, g, "user-red", 3)
	if !outcome.GameOver {
		t.Fatal("Expected game over after completing the top row")
	}
	if outcome.Winner != "user-red" {
		t.Errorf("Expected winner user-red, got %q", outcome.Winner)
	}
	if outcome.WinnerColor != board.Red {
		t.Errorf("Expected winner color red, got %q", outcome.WinnerColor)
	}
	if len(outcome.WinningLine) != 4 || outcome.WinningLine[0] != 0 || outcome.WinningLine[3] != 3 {
		t.Errorf("Expected winning line [0 1 2 3], got %v", outcome.WinningLine)
	}
	if outcome.Draw {
		t.Error("Expected a win, not a draw")
	}

	if g.Status != StatusFinished {
		t.Errorf("Expected status finished, got %q", g.Status)
	}
	if g.FinishedAt == nil {
		t.Error("Expected FinishedAt to be set")
	}
}

func TestFinishedGameRejectsMoves(t *testing.T) {
	g := createTestGame()

	mustApply(t, g, "user-red", 0)
	mustApply(t, g, "user-blue", 4)
	mustApply(t, g, "user-red", 1)
	mustApply(t, g, "user-blue", 5)
	mustApply(t, g, "user-red", 2)
	mustApply(t, g, "user-blue", 6)
	mustApply(t, g, "user-red", 3)

	movesBefore := len(g.Moves)

	_, err := g.ApplyMove("user-blue", 7, false)
	if kind := rejectionKind(t, err); kind != KindConflict {
		t.Errorf("Expected conflict rejection on finished game, got %q", kind)
	}
	if len(g.Moves) != movesBefore {
		t.Error("Expected move log unchanged after rejection")
	}
	if g.Board[7] != board.Empty {
		t.Error("Expected board unchanged after rejection")
	}
}

func TestPowerMoveFlipsAndWins(t *testing.T) {
	g := createTestGame()

	mustApply(t, g, "user-red", 0)
	mustApply(t, g, "user-blue", 3)
	mustApply(t, g, "user-red", 1)
	mustApply(t, g, "user-blue", 5)
	mustApply(t, g, "user-red", 2)
	mustApply(t, g, "user-blue", 6)

	// Red flips blue's piece at 3, completing the top row
	outcome, err := g.ApplyMove("user-red", 3, true)
	if err != nil {
		t.Fatalf("Power move failed: %v", err)
	}
	if !outcome.GameOver {
		t.Fatal("Expected power move flip to end the game")
	}
	if outcome.Winner != "user-red" {
		t.Errorf("Expected winner user-red, got %q", outcome.Winner)
	}
	if !outcome.PowerMoveUsed {
		t.Error("Expected outcome to report the power move as consumed")
	}
	if g.Board[3] != board.Red {
		t.Errorf("Expected flipped cell to be red, got %q", g.Board[3])
	}
	if !g.Players[0].PowerMoveUsed {
		t.Error("Expected red's power move to be marked used")
	}
}

func TestPowerMoveOnEmptyCellRejected(t *testing.T) {
	g := createTestGame()

	_, err := g.ApplyMove("user-red", 0, true)
	if kind := rejectionKind(t, err); kind != KindRuleViolation {
		t.Errorf("Expected rule violation, got %q", kind)
	}
	// A rejected attempt does not consume the power move
	if g.Players[0].PowerMoveUsed {
		t.Error("Expected power move to survive a rejected attempt")
	}
}

func TestPowerMoveOnOwnPieceRejected(t *testing.T) {
	g := createTestGame()

	mustApply(t, g, "user-red", 0)
	mustApply(t, g, "user-blue", 4)

	_, err := g.ApplyMove("user-red", 0, true)
	if kind := rejectionKind(t, err); kind != KindRuleViolation {
		t.Errorf("Expected rule violation, got %q", kind)
	}
	if g.Players[0].PowerMoveUsed {
		t.Error("Expected power move to survive a rejected attempt")
	}
}

func TestPowerMoveOnlyOnce(t *testing.T) {
	g := createTestGame()

	mustApply(t, g, "user-red", 0)
	mustApply(t, g, "user-blue", 4)

	// First power move: red flips blue's piece at 4
	if _, err := g.ApplyMove("user-red", 4, true); err != nil {
		t.Fatalf("First power move failed: %v", err)
	}

	mustApply(t, g, "user-blue", 8)

	// Second attempt is rejected even with a legal target
	_, err := g.ApplyMove("user-red", 8, true)
	if kind := rejectionKind(t, err); kind != KindConflict {
		t.Errorf("Expected conflict rejection, got %q", kind)
	}
}

func TestDraw(t *testing.T) {
	g := createTestGame()

	// Fill the board to R B R B / R B R B / B R B R / B R B R,
	// which holds no complete line for either color.
	redPositions := []int{0, 2, 4, 6, 9, 11, 13, 15}
	bluePositions := []int{1, 3, 5, 7, 8, 10, 12, 14}

	var outcome *MoveOutcome
	for i := 0; i < 8; i++ {
		outcome = mustApply(t, g, "user-red", redPositions[i])
		if i < 7 && outcome.GameOver {
			t.Fatalf("Unexpected game over after red's move %d", i+1)
		}
		outcome = mustApply(t, g, "user-blue", bluePositions[i])
		if i < 7 && outcome.GameOver {
			t.Fatalf("Unexpected game over after blue's move %d", i+1)
		}
	}

	if !outcome.GameOver {
		t.Fatal("Expected game over on a full board")
	}
	if !outcome.Draw {
		t.Error("Expected a draw")
	}
	if outcome.Winner != "" {
		t.Errorf("Expected no winner on a draw, got %q", outcome.Winner)
	}
	if g.Status != StatusFinished {
		t.Errorf("Expected status finished, got %q", g.Status)
	}
	if g.Winner != "" {
		t.Errorf("Expected no recorded winner, got %q", g.Winner)
	}
}

func TestValidateMoveDoesNotMutate(t *testing.T) {
	g := createTestGame()

	verdict := g.ValidateMove("user-red", 0, false)
	if !verdict.Valid {
		t.Fatalf("Expected valid verdict, got %q", verdict.Reason)
	}

	// Validation must leave the game untouched
	if g.Board[0] != board.Empty {
		t.Error("Expected board unchanged after validation")
	}
	if len(g.Moves) != 0 {
		t.Error("Expected move log unchanged after validation")
	}
	if g.CurrentTurn != "user-red" {
		t.Errorf("Expected turn unchanged, got %q", g.CurrentTurn)
	}
}

func TestValidateMoveMatchesApply(t *testing.T) {
	g := createTestGame()
	mustApply(t, g, "user-red", 5)

	cases := []struct {
		userID      string
		position    int
		isPowerMove bool
	}{
		{"user-blue", 5, false},  // occupied
		{"user-red", 0, false},   // out of turn
		{"user-blue", 20, false}, // invalid position
		{"user-blue", 0, true},   // power move on empty cell
		{"user-blue", 0, false},  // legal
	}

	for _, tc := range cases {
		verdict := g.ValidateMove(tc.userID, tc.position, tc.isPowerMove)

		probe := NewGame("probe", []Player{
			{UserID: "user-red", Username: "alice"},
			{UserID: "user-blue", Username: "bob"},
		})
		probe.Board = append([]board.Color(nil), g.Board...)
		probe.CurrentTurn = g.CurrentTurn
		_, err := probe.ApplyMove(tc.userID, tc.position, tc.isPowerMove)

		if verdict.Valid != (err == nil) {
			t.Errorf("Verdict for (%s,%d,power=%v) = %v but apply error = %v",
				tc.userID, tc.position, tc.isPowerMove, verdict.Valid, err)
		}
	}
}

func TestAbandon(t *testing.T) {
	g := createTestGame()
	mustApply(t, g, "user-red", 0)

	g.Abandon()

	if g.Status != StatusFinished {
		t.Errorf("Expected status finished, got %q", g.Status)
	}
	if g.Winner != "" {
		t.Errorf("Expected no winner on abandon, got %q", g.Winner)
	}
	if g.FinishedAt == nil {
		t.Error("Expected FinishedAt to be set")
	}

	_, err := g.ApplyMove("user-blue", 1, false)
	if kind := rejectionKind(t, err); kind != KindConflict {
		t.Errorf("Expected conflict rejection after abandon, got %q", kind)
	}
}

func TestViewSnapshot(t *testing.T) {
	g := createTestGame()
	mustApply(t, g, "user-red", 0)

	view := g.View()
	if view.MoveCount != 1 {
		t.Errorf("Expected move count 1, got %d", view.MoveCount)
	}

	// Mutating the snapshot must not leak into the game
	view.Board[1] = board.Blue
	if g.Board[1] != board.Empty {
		t.Error("Expected view board to be a copy")
	}
}
