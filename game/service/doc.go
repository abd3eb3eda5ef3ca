// Package service provides the business logic layer for Color Clash.
//
// The service package implements:
//   - Game creation gated on the room collaborator's state
//   - Move processing and dry-run validation
//   - Read-only game state queries and game listings
//   - Abandonment when a room disbands mid-game
//
// Core Interfaces:
//
// GameService is the engine's exposed boundary: everything a transport
// (REST, WebSocket relay, MCP) may ask the game engine to do goes through
// it. RoomDirectory abstracts the room collaborator consulted before game
// creation; the in-process room manager implements it, and tests supply
// mocks.
//
// Architecture:
//
// The service layer sits between the transports and the game engine. It
// owns no game state itself: the injected store does. Rule violations
// surface as *engine.Rejection values which transports map to their own
// error envelopes; any other error is an internal fault.
//
// Usage:
//
//	games := store.NewStore()
//	svc := service.NewGameService(games, roomDirectory)
//
//	view, err := svc.StartGame(ctx, roomID)
//	outcome, err := svc.MakeMove(ctx, roomID, userID, 5, false)
package service
