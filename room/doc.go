// Package room provides the lobby layer for Color Clash.
//
// A room is a named meeting point for exactly two players. The creator
// takes the red seat, the joiner takes blue, and once both seats are
// filled the room is eligible for a game start. Rooms move through the
// statuses waiting, playing, and finished.
//
// The Manager is safe for concurrent use and also satisfies the game
// service's RoomDirectory, translating seated players into the records
// the game layer consumes.
//
// Usage:
//
//	rooms := room.NewManager()
//
//	r := rooms.Create(userID, username)
//	r, err := rooms.Join(r.RoomID, otherID, otherName)
//
//	// Empty rooms are deleted, playing rooms finish when abandoned.
//	deleted, err := rooms.Leave(r.RoomID, userID)
package room
