package service

// GameSummary is the compact listing shape returned by ListGames
type GameSummary struct {
	GameID      string `json:"gameId"`
	RoomID      string `json:"roomId"`
	Status      string `json:"status"`
	MoveCount   int    `json:"moveCount"`
	CurrentTurn string `json:"currentTurn"`
	Winner      string `json:"winner,omitempty"`
}
