package match

import (
    "time"

    "github.com/kapu/world-chess-go/internal/board"
)

// Status represents the lifecycle state of the single authoritative game.
type Status string

const (
    StatusActive   Status = "ACTIVE"
    StatusFinished Status = "FINISHED"
)

// TurnLabel names the guard scope within one game. The visitor pool races
// for "visitor_turn"; the host never needs a guard because the single-use
// token already makes it a single actor.
type TurnLabel string

const GuardVisitorTurn TurnLabel = "visitor_turn"

// Game is the persisted state of the one ongoing host-vs-world contest.
// Version is a plain sequence counter compared for exact equality by the
// optimistic-concurrency check; it advances on every committed mutation.
type Game struct {
    ID            string      `json:"id"`
    HostColor     board.Color `json:"host_color"`
    TurnColor     board.Color `json:"turn_color"`
    Status        Status      `json:"status"`
    FEN           string      `json:"fen"`
    History       string      `json:"history"`
    LastMove      string      `json:"last_move,omitempty"`
    Result        string      `json:"result,omitempty"` // white | black | draw
    Reason        string      `json:"reason,omitempty"`
    OraclePending bool        `json:"oracle_pending,omitempty"`
    Version       int64       `json:"version"`
    CreatedAt     time.Time   `json:"created_at"`
    UpdatedAt     time.Time   `json:"updated_at"`
}

// VisitorColor is always the complement of the host color.
func (g *Game) VisitorColor() board.Color { return g.HostColor.Opposite() }

// Guard is the ephemeral exclusivity marker for one (game, turn label) pair.
// At most one row exists per pair at any time.
type Guard struct {
    GameID    string    `json:"game_id"`
    Label     TurnLabel `json:"label"`
    CreatedAt time.Time `json:"created_at"`
}

// TokenPurpose tags what a token authorizes.
type TokenPurpose string

const PurposeHostMove TokenPurpose = "host_move"

// Token is a single-use credential granting the host one privileged move
// submission. Expiry is derived: CreatedAt plus the manager's token TTL.
type Token struct {
    Value     string       `json:"value"`
    GameID    string       `json:"game_id"`
    Purpose   TokenPurpose `json:"purpose"`
    Used      bool         `json:"used"`
    CreatedAt time.Time    `json:"created_at"`
}

// ExpiresAt derives the expiry for a given ttl.
func (t *Token) ExpiresAt(ttl time.Duration) time.Time { return t.CreatedAt.Add(ttl) }
