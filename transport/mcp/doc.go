// Package mcp provides a Model Context Protocol interface for Color Clash.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for user, room, and game operations
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - register_user: Register a username and receive a user id
//   - create_room: Create a room and take the red seat
//   - join_room: Join a room and take the blue seat
//   - start_game: Start the game for a full room
//   - make_move: Place a piece or use the power move
//   - validate_move: Dry-run a move without playing it
//   - game_state: Get the current board, turn, and players
//   - list_games: List all games on the server
//   - game_instructions: Get the complete rules
//
// The client is a thin proxy: every tool call becomes a request against
// the REST API, so MCP agents and HTTP or WebSocket clients always see
// the same state.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	client := mcp.NewClient("http://localhost:8080")
//	http.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
//	    // delegate the JSON-RPC body to client.GetMCPServer().HandleMessage
//	})
package mcp
