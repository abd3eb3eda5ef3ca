// Package api provides HTTP REST API handlers for Color Clash.
//
// The api package implements:
//   - RESTful endpoints for users, rooms, and game operations
//   - WebSocket upgrade handling (delegated to the hub)
//   - Status-code mapping for rule rejections
//
// Endpoints:
//
// Users:
//   - POST /api/users/register - Register a new username
//   - POST /api/users/login - Log in by username
//   - GET /api/users - List known users
//   - GET /api/users/{id} - Get a user by id
//
// Rooms:
//   - POST /api/rooms - Create a room (creator takes the red seat)
//   - GET /api/rooms - List rooms (?available=true for joinable only)
//   - GET /api/rooms/{id} - Get a room
//   - POST /api/rooms/{id}/join - Join a room (joiner takes the blue seat)
//   - POST /api/rooms/{id}/leave - Leave a room
//
// Games:
//   - POST /api/games/start - Start the game for a full room
//   - POST /api/games/move - Apply a move
//   - POST /api/games/validate-move - Dry-run a move without applying it
//   - GET /api/games - List all games
//   - GET /api/games/{roomId}/state - Get a game's current state
//   - GET /api/games/{roomId}/moves - Get a game's move log
//
// All endpoints accept and return JSON. Rejected operations return
//
//	{ "error": "reason" }
//
// with 400 for validation, turn, and rule violations, 404 for missing
// users, rooms, or games, and 409 for conflicts such as an occupied
// position or an already-started game. Internal faults return 500 with
// a generic message.
//
// Successful game mutations are also broadcast to the room's WebSocket
// clients (MOVE_MADE, then GAME_OVER when the move ends the game) so
// REST callers and socket clients observe the same stream of events.
package api
