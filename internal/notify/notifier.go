package notify

import (
	"context"
	"time"
)

// MoveLink is everything the delivery side needs to hand the host its
// single-use move link: the game, the token the link embeds, when the token
// stops working, and the move that made it the host's turn.
type MoveLink struct {
	GameID    string    `json:"game_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	LastMove  string    `json:"last_move,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Notifier delivers a move link to the host. Delivery is best effort: the
// engine uses the returned error only for warning surfaces and never lets it
// gate a state transition.
type Notifier interface {
	SendMoveLink(ctx context.Context, link MoveLink) error
}

// Nop discards notifications. Used when no webhook is configured.
type Nop struct{}

func (Nop) SendMoveLink(context.Context, MoveLink) error { return nil }
