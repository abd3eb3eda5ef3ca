// Command analyze replays exported game files through a fresh engine and
// reports divergence between the recorded final state and the replayed
// one. Because the move log is append-only and the rules are
// deterministic, any divergence means the export was tampered with or
// produced by a buggy build.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MwangiRon/color-clash/game/board"
	"github.com/MwangiRon/color-clash/game/engine"
)

// ExportedGame is a light struct for reading exported game files.
type ExportedGame struct {
	GameID  string          `json:"gameId"`
	RoomID  string          `json:"roomId"`
	Board   []board.Color   `json:"board"`
	Players []engine.Player `json:"players"`
	Moves   []engine.Move   `json:"moves"`
	Status  string          `json:"status"`
	Winner  string          `json:"winner"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <game.json> [game.json ...]\n", os.Args[0])
		os.Exit(2)
	}

	failed := 0
	for _, path := range os.Args[1:] {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		if !analyzeGame(path) {
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d files diverged\n", failed, len(os.Args)-1)
		os.Exit(1)
	}
}

func analyzeGame(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return false
	}

	var exported ExportedGame
	if err := json.Unmarshal(data, &exported); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return false
	}

	if len(exported.Players) != 2 {
		fmt.Printf("Error: expected 2 players, got %d\n", len(exported.Players))
		return false
	}

	fmt.Printf("Game: %s (room %s)\n", exported.GameID, exported.RoomID)
	fmt.Printf("Players: %s (red) vs %s (blue)\n", exported.Players[0].Username, exported.Players[1].Username)
	fmt.Printf("Moves: %d\n", len(exported.Moves))

	// Replay the log through a fresh game
	game := engine.NewGame(exported.RoomID, exported.Players)
	for i, move := range exported.Moves {
		if _, err := game.ApplyMove(move.UserID, move.Position, move.IsPowerMove); err != nil {
			fmt.Printf("⚠️  Move %d rejected on replay: %v\n", i+1, err)
			fmt.Printf("   user=%s position=%d power=%v\n", move.UserID, move.Position, move.IsPowerMove)
			return false
		}
	}

	ok := true
	view := game.View()

	// Compare boards cell by cell
	mismatches := 0
	for pos := range view.Board {
		if pos < len(exported.Board) && view.Board[pos] != exported.Board[pos] {
			if mismatches < 5 {
				fmt.Printf("⚠️  Board mismatch at position %d: recorded %q, replayed %q\n",
					pos, exported.Board[pos], view.Board[pos])
			}
			mismatches++
		}
	}
	if len(exported.Board) != len(view.Board) {
		fmt.Printf("⚠️  Board length mismatch: recorded %d, replayed %d\n", len(exported.Board), len(view.Board))
		ok = false
	}
	if mismatches > 0 {
		fmt.Printf("⚠️  %d board cells diverged\n", mismatches)
		ok = false
	}

	if exported.Status != "" && exported.Status != string(view.Status) {
		fmt.Printf("⚠️  Status mismatch: recorded %q, replayed %q\n", exported.Status, view.Status)
		ok = false
	}
	if exported.Winner != view.Winner {
		fmt.Printf("⚠️  Winner mismatch: recorded %q, replayed %q\n", exported.Winner, view.Winner)
		ok = false
	}

	if ok {
		fmt.Printf("✅ Replay matches the recorded state\n")
		fmt.Println(board.Render(view.Board))
	}
	return ok
}
