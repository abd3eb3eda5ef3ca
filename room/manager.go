// Package room provides the lobby manager for Color Clash.
//
// A room pairs up to two players before a game. The creator is seated as
// red; the second player to join is seated as blue, which flips the room
// from waiting to playing. Rooms empty out when their last player leaves,
// and a playing room that loses a player finishes immediately.
//
// The manager implements service.RoomDirectory so the game engine can
// verify a room is ready before creating its game.
package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MwangiRon/color-clash/game/board"
	"github.com/MwangiRon/color-clash/game/service"
)

// Room lifecycle states
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	// MaxPlayers is the seat count of every room
	MaxPlayers = 2
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadySeated = errors.New("user already in room")
	ErrNotInRoom     = errors.New("user is not in this room")
)

// Seat is one occupied seat of a room
type Seat struct {
	UserID   string      `json:"userId"`
	Username string      `json:"username"`
	Color    board.Color `json:"color"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// Room is a lobby pairing two players
type Room struct {
	RoomID     string     `json:"roomId"`
	Status     string     `json:"status"`
	Players    []Seat     `json:"players"`
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// snapshot copies the room so callers can read and encode it outside
// the manager lock. The seat slice is copied too; a later Join must not
// show up in a snapshot handed out earlier.
func (r *Room) snapshot() *Room {
	cp := *r
	cp.Players = make([]Seat, len(r.Players))
	copy(cp.Players, r.Players)
	return &cp
}

// Manager is a thread-safe in-memory room store
type Manager struct {
	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewManager creates an empty room manager
func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// Create opens a new room with the creator seated as red
func (m *Manager) Create(userID, username string) *Room {
	room := &Room{
		RoomID: uuid.NewString(),
		Status: StatusWaiting,
		Players: []Seat{{
			UserID:   userID,
			Username: username,
			Color:    board.Red,
			JoinedAt: time.Now(),
		}},
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.rooms[room.RoomID] = room
	m.mu.Unlock()

	return room.snapshot()
}

// Join seats a second player as blue. Filling the room flips it to
// playing and stamps startedAt.
func (m *Manager) Join(roomID, userID, username string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}
	if len(room.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, seat := range room.Players {
		if seat.UserID == userID {
			return nil, ErrAlreadySeated
		}
	}

	room.Players = append(room.Players, Seat{
		UserID:   userID,
		Username: username,
		Color:    board.Blue,
		JoinedAt: time.Now(),
	})

	if len(room.Players) == MaxPlayers {
		now := time.Now()
		room.Status = StatusPlaying
		room.StartedAt = &now
	}

	return room.snapshot(), nil
}

// Leave removes a player from a room. The last player out deletes the
// room; a playing room that loses a player is finished. Returns whether
// the room was deleted.
func (m *Manager) Leave(roomID, userID string) (deleted bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return false, ErrRoomNotFound
	}

	seats := room.Players[:0]
	found := false
	for _, seat := range room.Players {
		if seat.UserID == userID {
			found = true
			continue
		}
		seats = append(seats, seat)
	}
	if !found {
		return false, ErrNotInRoom
	}
	room.Players = seats

	if len(room.Players) == 0 {
		delete(m.rooms, roomID)
		return true, nil
	}

	if room.Status == StatusPlaying {
		now := time.Now()
		room.Status = StatusFinished
		room.FinishedAt = &now
	}

	return false, nil
}

// Get retrieves a room by ID
func (m *Manager) Get(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room.snapshot(), nil
}

// List returns all rooms
func (m *Manager) List() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		result = append(result, room.snapshot())
	}
	return result
}

// Available returns rooms still waiting for a second player
func (m *Manager) Available() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Room, 0)
	for _, room := range m.rooms {
		if room.Status == StatusWaiting {
			result = append(result, room.snapshot())
		}
	}
	return result
}

// UpdateStatus sets a room's status, stamping finishedAt on finish
func (m *Manager) UpdateStatus(roomID, status string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return false
	}

	room.Status = status
	if status == StatusFinished {
		now := time.Now()
		room.FinishedAt = &now
	}
	return true
}

// Room implements service.RoomDirectory, exposing the record shape the
// game engine consults before creating a game.
func (m *Manager) Room(ctx context.Context, roomID string) (*service.RoomRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return nil, service.ErrRoomNotFound
	}

	players := make([]service.RoomPlayer, 0, len(room.Players))
	for _, seat := range room.Players {
		players = append(players, service.RoomPlayer{
			UserID:   seat.UserID,
			Username: seat.Username,
		})
	}

	return &service.RoomRecord{
		RoomID:  room.RoomID,
		Status:  room.Status,
		Players: players,
	}, nil
}
