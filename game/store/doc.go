// Package store provides the in-memory game registry for Color Clash.
//
// The store package implements:
//   - Thread-safe storage of games keyed by room ID
//   - At-most-one active game per room
//   - Lookup by room ID (direct) and game ID (scan)
//   - Retention sweeps that evict finished games after a grace window
//
// Concurrency:
//
// The store guards its map with a read-write mutex; per-move serialization
// is the game entity's own concern. Multiple goroutines can safely create,
// retrieve, and delete different games simultaneously.
//
// Usage:
//
//	games := store.NewStore()
//
//	game, err := games.Create(roomID, players)
//	if errors.Is(err, store.ErrGameExists) {
//		// a game already runs in this room
//	}
//
//	game, err = games.FindByRoomID(roomID)
//
// Retention:
//
// Finished games stay in the store so their move logs remain queryable,
// then get evicted by CleanupFinished once older than the configured
// window. Active games are never evicted.
package store
