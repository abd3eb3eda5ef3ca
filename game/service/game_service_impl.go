package service

import (
	"context"
	"errors"
	"fmt"

	log15 "github.com/inconshreveable/log15/v3"

	"github.com/MwangiRon/color-clash/game/engine"
	"github.com/MwangiRon/color-clash/game/store"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	games *store.Store
	rooms RoomDirectory
	log   log15.Logger
}

// NewGameService creates a new game service instance backed by the given
// store and room collaborator.
func NewGameService(games *store.Store, rooms RoomDirectory) GameService {
	return &gameServiceImpl{
		games: games,
		rooms: rooms,
		log:   log15.New("component", "game-service"),
	}
}

// StartGame creates the game for a room. The room must exist, hold
// exactly two players, and have no game yet; the two seats become red
// and blue in join order.
func (s *gameServiceImpl) StartGame(ctx context.Context, roomID string) (*engine.GameView, error) {
	if roomID == "" {
		return nil, &engine.Rejection{Kind: engine.KindValidation, Reason: "roomId is required"}
	}

	room, err := s.rooms.Room(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, &engine.Rejection{Kind: engine.KindNotFound, Reason: "Room not found"}
		}
		return nil, fmt.Errorf("failed to look up room %s: %w", roomID, err)
	}

	if len(room.Players) < 2 {
		return nil, &engine.Rejection{Kind: engine.KindValidation, Reason: "Room needs 2 players to start"}
	}

	players := []engine.Player{
		{UserID: room.Players[0].UserID, Username: room.Players[0].Username},
		{UserID: room.Players[1].UserID, Username: room.Players[1].Username},
	}

	game, err := s.games.Create(roomID, players)
	if err != nil {
		if errors.Is(err, store.ErrGameExists) {
			return nil, &engine.Rejection{Kind: engine.KindConflict, Reason: "Game already started for this room"}
		}
		return nil, fmt.Errorf("failed to create game for room %s: %w", roomID, err)
	}

	s.log.Info("game started", "room", roomID, "game", game.GameID)
	return game.View(), nil
}

// MakeMove validates and applies a single move for a room's game
func (s *gameServiceImpl) MakeMove(ctx context.Context, roomID, userID string, position int, isPowerMove bool) (*engine.MoveOutcome, error) {
	if roomID == "" || userID == "" {
		return nil, &engine.Rejection{Kind: engine.KindValidation, Reason: "roomId, userId, and position are required"}
	}

	game, err := s.games.FindByRoomID(roomID)
	if err != nil {
		return nil, &engine.Rejection{Kind: engine.KindNotFound, Reason: "Game not found"}
	}

	outcome, err := game.ApplyMove(userID, position, isPowerMove)
	if err != nil {
		return nil, err
	}

	if isPowerMove {
		s.log.Info("power move applied", "room", roomID, "user", userID, "position", position)
	} else {
		s.log.Info("move applied", "room", roomID, "user", userID, "position", position)
	}
	if outcome.GameOver {
		if outcome.Draw {
			s.log.Info("game finished in a draw", "room", roomID)
		} else {
			s.log.Info("game finished", "room", roomID, "winner", outcome.Winner)
		}
	}

	return outcome, nil
}

// ValidateMove dry-runs the move checks without touching game state
func (s *gameServiceImpl) ValidateMove(ctx context.Context, roomID, userID string, position int, isPowerMove bool) (*engine.Verdict, error) {
	game, err := s.games.FindByRoomID(roomID)
	if err != nil {
		return nil, &engine.Rejection{Kind: engine.KindNotFound, Reason: "Game not found"}
	}

	verdict := game.ValidateMove(userID, position, isPowerMove)
	return &verdict, nil
}

// GetGameState returns the read-only projection of a room's game
func (s *gameServiceImpl) GetGameState(ctx context.Context, roomID string) (*engine.GameView, error) {
	game, err := s.games.FindByRoomID(roomID)
	if err != nil {
		return nil, &engine.Rejection{Kind: engine.KindNotFound, Reason: "Game not found"}
	}
	return game.View(), nil
}

// GetMoveLog returns the append-only move log of a room's game
func (s *gameServiceImpl) GetMoveLog(ctx context.Context, roomID string) ([]engine.Move, error) {
	game, err := s.games.FindByRoomID(roomID)
	if err != nil {
		return nil, &engine.Rejection{Kind: engine.KindNotFound, Reason: "Game not found"}
	}
	return game.MoveLog(), nil
}

// ListGames returns a summary of every stored game
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameSummary, error) {
	games := s.games.List()
	result := make([]*GameSummary, 0, len(games))

	for _, g := range games {
		view := g.View()
		result = append(result, &GameSummary{
			GameID:      view.GameID,
			RoomID:      view.RoomID,
			Status:      string(view.Status),
			MoveCount:   view.MoveCount,
			CurrentTurn: view.CurrentTurn,
			Winner:      view.Winner,
		})
	}

	return result, nil
}

// AbandonGame finishes a room's game without a winner. Called when the
// room disbands; a missing game is not an error here because rooms can
// disband before any game started.
func (s *gameServiceImpl) AbandonGame(ctx context.Context, roomID string) error {
	game, err := s.games.FindByRoomID(roomID)
	if err != nil {
		return nil
	}

	if !game.IsFinished() {
		game.Abandon()
		s.log.Info("game abandoned", "room", roomID, "game", game.GameID)
	}
	return nil
}
