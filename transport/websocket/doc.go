// Package websocket provides the gateway relay transport for Color Clash.
//
// The websocket package implements:
//   - Hub-and-spoke connection management with room-scoped client sets
//   - Typed JSON envelopes ({type, payload}) in both directions
//   - Dispatch of client intents to the user, room, and game services
//   - Broadcast of successful state changes to room members
//
// Message Protocol:
//
// Inbound envelope types: REGISTER_USER, LOGIN_USER, CREATE_ROOM,
// JOIN_ROOM, LEAVE_ROOM, START_GAME, MAKE_MOVE, GET_GAME_STATE, PING.
//
// Outbound envelope types: USER_REGISTERED, USER_LOGGED_IN, ROOM_CREATED,
// ROOM_JOINED, OPPONENT_JOINED, GAME_STARTED, MOVE_MADE, GAME_OVER,
// PLAYER_LEFT, LEFT_ROOM, GAME_STATE, PONG, ERROR.
//
// Error Policy:
//
// A rejected move is reported only to the offending client as an ERROR
// envelope carrying the rejection reason verbatim; other room members are
// not notified. Successful moves broadcast MOVE_MADE to the whole room,
// followed by GAME_OVER when the move was terminal.
//
// Concurrency:
//
// The hub owns all connection bookkeeping inside a single Run loop fed by
// channels; per-connection read and write pumps follow the standard
// gorilla pattern with ping/pong deadlines and a bounded send queue.
// Slow clients whose queue fills are dropped rather than blocking the
// room broadcast.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.NewGateway(users, rooms, games))
//	go hub.Run()
//	mux.HandleFunc("/ws", hub.ServeWS)
package websocket
