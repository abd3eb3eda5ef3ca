package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MwangiRon/color-clash/game/board"
	"github.com/MwangiRon/color-clash/game/engine"
	"github.com/MwangiRon/color-clash/game/service"
	"github.com/MwangiRon/color-clash/game/store"
)

// MockRoomDirectory implements service.RoomDirectory for testing
type MockRoomDirectory struct {
	rooms map[string]*service.RoomRecord
}

func NewMockRoomDirectory() *MockRoomDirectory {
	return &MockRoomDirectory{
		rooms: make(map[string]*service.RoomRecord),
	}
}

func (m *MockRoomDirectory) Room(ctx context.Context, roomID string) (*service.RoomRecord, error) {
	room, exists := m.rooms[roomID]
	if !exists {
		return nil, service.ErrRoomNotFound
	}
	return room, nil
}

func (m *MockRoomDirectory) addFullRoom(roomID string) {
	m.rooms[roomID] = &service.RoomRecord{
		RoomID: roomID,
		Status: "waiting",
		Players: []service.RoomPlayer{
			{UserID: "user-red", Username: "alice"},
			{UserID: "user-blue", Username: "bob"},
		},
	}
}

func (m *MockRoomDirectory) addWaitingRoom(roomID string) {
	m.rooms[roomID] = &service.RoomRecord{
		RoomID: roomID,
		Status: "waiting",
		Players: []service.RoomPlayer{
			{UserID: "user-red", Username: "alice"},
		},
	}
}

func newTestService() (service.GameService, *MockRoomDirectory) {
	rooms := NewMockRoomDirectory()
	return service.NewGameService(store.NewStore(), rooms), rooms
}

func rejectionKind(t *testing.T, err error) engine.RejectionKind {
	t.Helper()
	var rej *engine.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("Expected a Rejection, got %T: %v", err, err)
	}
	return rej.Kind
}

func TestStartGame(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")

	view, err := svc.StartGame(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	if view.RoomID != "room-1" {
		t.Errorf("Expected room-1, got %q", view.RoomID)
	}
	if view.Status != engine.StatusActive {
		t.Errorf("Expected active game, got %q", view.Status)
	}
	if view.Players[0].Color != board.Red || view.Players[1].Color != board.Blue {
		t.Errorf("Expected join order to decide colors, got %q/%q",
			view.Players[0].Color, view.Players[1].Color)
	}
	if view.CurrentTurn != "user-red" {
		t.Errorf("Expected red to move first, got %q", view.CurrentTurn)
	}
}

func TestStartGameMissingRoomID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.StartGame(context.Background(), "")
	if kind := rejectionKind(t, err); kind != engine.KindValidation {
		t.Errorf("Expected validation rejection, got %q", kind)
	}
}

func TestStartGameRoomNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.StartGame(context.Background(), "nope")
	if kind := rejectionKind(t, err); kind != engine.KindNotFound {
		t.Errorf("Expected not-found rejection, got %q", kind)
	}
}

func TestStartGameRoomNotFull(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addWaitingRoom("room-1")

	_, err := svc.StartGame(context.Background(), "room-1")
	if kind := rejectionKind(t, err); kind != engine.KindValidation {
		t.Errorf("Expected validation rejection, got %q", kind)
	}
}

func TestStartGameTwice(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")

	if _, err := svc.StartGame(context.Background(), "room-1"); err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	_, err := svc.StartGame(context.Background(), "room-1")
	if kind := rejectionKind(t, err); kind != engine.KindConflict {
		t.Errorf("Expected conflict rejection, got %q", kind)
	}
}

func TestMakeMove(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	svc.StartGame(context.Background(), "room-1")

	outcome, err := svc.MakeMove(context.Background(), "room-1", "user-red", 0, false)
	if err != nil {
		t.Fatalf("MakeMove failed: %v", err)
	}
	if outcome.GameOver {
		t.Error("Expected game to continue")
	}
	if outcome.Board[0] != board.Red {
		t.Errorf("Expected red piece at 0, got %q", outcome.Board[0])
	}
	if outcome.CurrentTurn != "user-blue" {
		t.Errorf("Expected turn to pass to blue, got %q", outcome.CurrentTurn)
	}
}

func TestMakeMoveMissingArguments(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.MakeMove(context.Background(), "", "user-red", 0, false)
	if kind := rejectionKind(t, err); kind != engine.KindValidation {
		t.Errorf("Expected validation rejection, got %q", kind)
	}

	_, err = svc.MakeMove(context.Background(), "room-1", "", 0, false)
	if kind := rejectionKind(t, err); kind != engine.KindValidation {
		t.Errorf("Expected validation rejection, got %q", kind)
	}
}

func TestMakeMoveGameNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.MakeMove(context.Background(), "room-1", "user-red", 0, false)
	if kind := rejectionKind(t, err); kind != engine.KindNotFound {
		t.Errorf("Expected not-found rejection, got %q", kind)
	}
}

func TestMakeMoveRejectionsPassThrough(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	svc.StartGame(context.Background(), "room-1")

	// Out of turn
	_, err := svc.MakeMove(context.Background(), "room-1", "user-blue", 0, false)
	if kind := rejectionKind(t, err); kind != engine.KindTurn {
		t.Errorf("Expected turn rejection, got %q", kind)
	}
}

func TestValidateMove(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	svc.StartGame(context.Background(), "room-1")

	verdict, err := svc.ValidateMove(context.Background(), "room-1", "user-red", 0, false)
	if err != nil {
		t.Fatalf("ValidateMove failed: %v", err)
	}
	if !verdict.Valid {
		t.Errorf("Expected valid verdict, got %q", verdict.Reason)
	}

	verdict, err = svc.ValidateMove(context.Background(), "room-1", "user-blue", 0, false)
	if err != nil {
		t.Fatalf("ValidateMove failed: %v", err)
	}
	if verdict.Valid {
		t.Error("Expected out-of-turn move to be invalid")
	}
	if verdict.Reason == "" {
		t.Error("Expected a reason on an invalid verdict")
	}

	// Validation never advances the game
	view, _ := svc.GetGameState(context.Background(), "room-1")
	if view.MoveCount != 0 {
		t.Errorf("Expected no logged moves, got %d", view.MoveCount)
	}
}

func TestGetGameState(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	svc.StartGame(context.Background(), "room-1")
	svc.MakeMove(context.Background(), "room-1", "user-red", 3, false)

	view, err := svc.GetGameState(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	if view.MoveCount != 1 {
		t.Errorf("Expected 1 move, got %d", view.MoveCount)
	}
	if view.Board[3] != board.Red {
		t.Errorf("Expected red piece at 3, got %q", view.Board[3])
	}
}

func TestGetMoveLog(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	svc.StartGame(context.Background(), "room-1")
	svc.MakeMove(context.Background(), "room-1", "user-red", 0, false)
	svc.MakeMove(context.Background(), "room-1", "user-blue", 4, false)

	moves, err := svc.GetMoveLog(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("GetMoveLog failed: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("Expected 2 moves, got %d", len(moves))
	}
	if moves[0].UserID != "user-red" || moves[0].Position != 0 {
		t.Errorf("Unexpected first move: %+v", moves[0])
	}
	if moves[1].Color != board.Blue {
		t.Errorf("Expected second move to be blue, got %q", moves[1].Color)
	}
}

func TestListGames(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	rooms.addFullRoom("room-2")
	svc.StartGame(context.Background(), "room-1")
	svc.StartGame(context.Background(), "room-2")

	games, err := svc.ListGames(context.Background())
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(games))
	}
}

func TestAbandonGame(t *testing.T) {
	svc, rooms := newTestService()
	rooms.addFullRoom("room-1")
	svc.StartGame(context.Background(), "room-1")

	if err := svc.AbandonGame(context.Background(), "room-1"); err != nil {
		t.Fatalf("AbandonGame failed: %v", err)
	}

	view, _ := svc.GetGameState(context.Background(), "room-1")
	if view.Status != engine.StatusFinished {
		t.Errorf("Expected finished game, got %q", view.Status)
	}
	if view.Winner != "" {
		t.Errorf("Expected no winner, got %q", view.Winner)
	}

	// Abandoning a room with no game is a no-op
	if err := svc.AbandonGame(context.Background(), "room-none"); err != nil {
		t.Errorf("Expected nil for missing game, got %v", err)
	}
}
