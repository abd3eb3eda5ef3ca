package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MwangiRon/color-clash/game/board"
	"github.com/MwangiRon/color-clash/game/engine"
	"github.com/MwangiRon/color-clash/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Color Clash",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Color Clash - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players (red and blue) take turns placing pieces on a 4x4 board.
First to line up 4 pieces in a row, column, or diagonal wins. Each
player also holds one power move that flips an opponent piece.

AVAILABLE TOOLS:
- register_user: Register a username and get a user id
- create_room: Create a room (you take the red seat)
- join_room: Join an existing room (you take the blue seat)
- start_game: Start the game once the room has two players
- make_move: Place a piece (or flip one with your power move)
- validate_move: Check whether a move would be accepted, without playing it
- game_state: Get the current board, turn, and players
- list_games: List all games on the server
- game_instructions: Get the complete rules

Positions are 0-15, row-major: 0 is top-left, 15 is bottom-right.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "register_user",
		Description: "Register a new username and receive a user id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Username to register (3-20 characters)",
				},
			},
			Required: []string{"username"},
		},
	}, c.handleRegisterUser)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new room; the creator takes the red seat and moves first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User ID of the creator",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Username of the creator",
				},
			},
			Required: []string{"user_id"},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_room",
		Description: "Join an existing room; the joiner takes the blue seat",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to join",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User ID of the joiner",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Username of the joiner",
				},
			},
			Required: []string{"room_id", "user_id"},
		},
	}, c.handleJoinRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start the game for a room that has two players",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Place a piece on an empty position, or flip an opponent piece with your one power move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User ID of the player moving",
				},
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Board position 0-15, row-major from the top-left",
				},
				"is_power_move": map[string]interface{}{
					"type":        "boolean",
					"description": "Use the once-per-game power move to flip an opponent piece at this position",
				},
			},
			Required: []string{"room_id", "user_id", "position"},
		},
	}, c.handleMakeMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_move",
		Description: "Check whether a move would be accepted, without changing the game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User ID of the player moving",
				},
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Board position 0-15",
				},
				"is_power_move": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the move would use the power move",
				},
			},
			Required: []string{"room_id", "user_id", "position"},
		},
	}, c.handleValidateMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state for a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all games on the server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// toolArgs extracts a tool call's argument map, tolerating calls that
// carry no arguments object at all.
func toolArgs(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleRegisterUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	username, _ := args["username"].(string)

	var user struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	err := c.apiCall("POST", "/api/users/register", map[string]string{"username": username}, &user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Registered user: %s\nUser ID: %s\n", user.Username, user.UserID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	userID, _ := args["user_id"].(string)
	username, _ := args["username"].(string)

	var room struct {
		RoomID string `json:"roomId"`
		Status string `json:"status"`
	}
	err := c.apiCall("POST", "/api/rooms", map[string]string{
		"userId":   userID,
		"username": username,
	}, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room: %s\nStatus: %s\nYou hold the red seat and move first once the game starts.\n", room.RoomID, room.Status)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	roomID, _ := args["room_id"].(string)
	userID, _ := args["user_id"].(string)
	username, _ := args["username"].(string)

	var room struct {
		RoomID string `json:"roomId"`
		Status string `json:"status"`
	}
	err := c.apiCall("POST", fmt.Sprintf("/api/rooms/%s/join", roomID), map[string]string{
		"userId":   userID,
		"username": username,
	}, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined room: %s\nStatus: %s\nYou hold the blue seat.\n", room.RoomID, room.Status)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	roomID, _ := args["room_id"].(string)

	var view engine.GameView
	err := c.apiCall("POST", "/api/games/start", map[string]string{"roomId": roomID}, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Game started: %s\n\n%s", view.GameID, formatGameView(&view))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	roomID, _ := args["room_id"].(string)
	userID, _ := args["user_id"].(string)
	position := 0
	if p, ok := args["position"].(float64); ok {
		position = int(p)
	}
	isPowerMove, _ := args["is_power_move"].(bool)

	body := map[string]interface{}{
		"roomId":      roomID,
		"userId":      userID,
		"position":    position,
		"isPowerMove": isPowerMove,
	}

	var outcome engine.MoveOutcome
	err := c.apiCall("POST", "/api/games/move", body, &outcome)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatMoveOutcome(&outcome)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleValidateMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	roomID, _ := args["room_id"].(string)
	userID, _ := args["user_id"].(string)
	position := 0
	if p, ok := args["position"].(float64); ok {
		position = int(p)
	}
	isPowerMove, _ := args["is_power_move"].(bool)

	body := map[string]interface{}{
		"roomId":      roomID,
		"userId":      userID,
		"position":    position,
		"isPowerMove": isPowerMove,
	}

	var verdict engine.Verdict
	err := c.apiCall("POST", "/api/games/validate-move", body, &verdict)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if verdict.Valid {
		return mcp.NewToolResultText("✓ Move is valid"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✗ Move would be rejected: %s", verdict.Reason)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := toolArgs(request)
	roomID, _ := args["room_id"].(string)

	var view engine.GameView
	err := c.apiCall("GET", fmt.Sprintf("/api/games/%s/state", roomID), nil, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameView(&view)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                    `json:"count"`
		Games []*service.GameSummary `json:"games"`
	}

	err := c.apiCall("GET", "/api/games", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		line := fmt.Sprintf("- %s (room %s, %s, %d moves", g.GameID, g.RoomID, g.Status, g.MoveCount)
		if g.Winner != "" {
			line += fmt.Sprintf(", winner %s", g.Winner)
		}
		result += line + ")\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 Color Clash - Complete Rules

GAME OBJECTIVE:
Line up 4 of your pieces in a row, column, or diagonal on a 4x4 board
before your opponent does.

SETUP:
• Two players per room. The room creator plays red, the joiner plays blue.
• Red always moves first.
• Positions are numbered 0-15, row-major from the top-left:

    0  1  2  3
    4  5  6  7
    8  9 10 11
   12 13 14 15

REGULAR MOVES:
• On your turn, place a piece of your color on any EMPTY position.
• Placing on an occupied position is rejected.

POWER MOVE:
• Each player has exactly ONE power move per game.
• A power move targets a position holding an OPPONENT piece and flips
  it to your color.
• A power move on an empty position or on your own piece is rejected,
  and your power move is NOT consumed by a rejected attempt.

WINNING:
• 4 in a row wins: any full row, column, or either main diagonal.
• A power move can win instantly by flipping the fourth piece of a line.
• If the board fills with no winner, the game is a draw.

TURN ORDER:
• Turns alternate after every accepted move. Rejected moves do not
  change the turn.
• Moving out of turn is rejected.

WORKFLOW:
1. register_user for both players
2. create_room (red) and join_room (blue)
3. start_game with the room id
4. Alternate make_move calls; use validate_move to probe safely
5. game_state shows the board at any time

Good luck! 🔴🔵`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatGameView(view *engine.GameView) string {
	if view == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Game: %s | Room: %s | Status: %s | Moves: %d\n",
		view.GameID, view.RoomID, view.Status, view.MoveCount))

	turnName := view.CurrentTurn
	for _, p := range view.Players {
		marker := " "
		if view.Status == engine.StatusActive && p.UserID == view.CurrentTurn {
			marker = "*"
			turnName = p.Username
		}
		power := "power move available"
		if p.PowerMoveUsed {
			power = "power move used"
		}
		result.WriteString(fmt.Sprintf("%s %s (%s, %s)\n", marker, p.Username, p.Color, power))
	}

	result.WriteString("\n" + formatBoard(view.Board))

	if view.Status == engine.StatusFinished {
		if view.Winner != "" {
			result.WriteString(fmt.Sprintf("\n🏆 Winner: %s", view.Winner))
		} else {
			result.WriteString("\n🤝 Draw")
		}
	} else {
		result.WriteString(fmt.Sprintf("\nCurrent turn: %s", turnName))
	}

	return result.String()
}

func formatMoveOutcome(outcome *engine.MoveOutcome) string {
	var result strings.Builder

	result.WriteString("✓ Move applied\n\n")
	result.WriteString(formatBoard(outcome.Board))

	if outcome.GameOver {
		if outcome.Draw {
			result.WriteString("\n🤝 Game over: draw")
		} else {
			result.WriteString(fmt.Sprintf("\n🏆 Game over: %s (%s) wins", outcome.Winner, outcome.WinnerColor))
			if len(outcome.WinningLine) == 4 {
				result.WriteString(fmt.Sprintf(" on line %v", outcome.WinningLine))
			}
		}
	} else {
		result.WriteString(fmt.Sprintf("\nNext turn: %s", outcome.CurrentTurn))
		if outcome.NextPlayer != "" {
			result.WriteString(fmt.Sprintf(" (%s)", outcome.NextPlayer))
		}
	}

	return result.String()
}

// formatBoard renders the 4x4 board with R, B, and - cells
func formatBoard(cells []board.Color) string {
	var b strings.Builder
	for row := 0; row < board.GridDim; row++ {
		for col := 0; col < board.GridDim; col++ {
			if col > 0 {
				b.WriteString(" ")
			}
			switch cells[row*board.GridDim+col] {
			case board.Red:
				b.WriteString("R")
			case board.Blue:
				b.WriteString("B")
			default:
				b.WriteString("-")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
