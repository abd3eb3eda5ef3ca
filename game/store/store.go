package store

import (
	"errors"
	"sync"
	"time"

	"github.com/MwangiRon/color-clash/game/engine"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already started for this room")
)

// Store holds every live game, keyed by room ID. One active game per
// room; construct at service start and inject where needed.
type Store struct {
	games map[string]*engine.Game
	mu    sync.RWMutex
}

// NewStore creates an empty game store
func NewStore() *Store {
	return &Store{
		games: make(map[string]*engine.Game),
	}
}

// Create creates and registers a game for a room. It fails with
// ErrGameExists if the room already has one; existence check and insert
// happen under one lock so two racing starts cannot both succeed.
func (s *Store) Create(roomID string, players []engine.Player) (*engine.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[roomID]; exists {
		return nil, ErrGameExists
	}

	game := engine.NewGame(roomID, players)
	s.games[roomID] = game
	return game, nil
}

// FindByRoomID retrieves the game for a room
func (s *Store) FindByRoomID(roomID string) (*engine.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, exists := s.games[roomID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// FindByGameID retrieves a game by its game ID with a linear scan
func (s *Store) FindByGameID(gameID string) (*engine.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, game := range s.games {
		if game.GameID == gameID {
			return game, nil
		}
	}
	return nil, ErrGameNotFound
}

// List returns all stored games
func (s *Store) List() []*engine.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*engine.Game, 0, len(s.games))
	for _, game := range s.games {
		result = append(result, game)
	}
	return result
}

// Delete removes the game for a room, reporting whether one existed
func (s *Store) Delete(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[roomID]; !exists {
		return false
	}
	delete(s.games, roomID)
	return true
}

// Count returns the number of stored games
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// CleanupFinished evicts games that finished more than maxAge ago and
// returns how many were removed. Active games are left alone.
func (s *Store) CleanupFinished(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for roomID, game := range s.games {
		if game.FinishedBefore(cutoff) {
			delete(s.games, roomID)
			removed++
		}
	}

	return removed
}
