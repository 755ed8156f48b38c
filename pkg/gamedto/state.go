package gamedto

import "time"

// GameState is the externally visible snapshot of the single active game.
type GameState struct {
	ID           string    `json:"id"`
	FEN          string    `json:"fen"`
	History      string    `json:"history"`
	LastMove     string    `json:"last_move,omitempty"`
	TurnColor    string    `json:"turn_color"`
	HostColor    string    `json:"host_color"`
	VisitorColor string    `json:"visitor_color"`
	Status       string    `json:"status"`
	Result       string    `json:"result,omitempty"`
	Version      int64     `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MoveRequest is a single move submission against a known game version.
type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Version   int64  `json:"version"`
	Token     string `json:"token,omitempty"`
}

// MoveResponse reports the committed state after an accepted move.
type MoveResponse struct {
	State    *GameState `json:"state"`
	SAN      string     `json:"san"`
	Finished bool       `json:"finished"`
}
