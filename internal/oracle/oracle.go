package oracle

import (
	"context"

	"github.com/kapu/world-chess-go/internal/board"
)

// Reason classifies why a position ended the game.
type Reason string

const (
	ReasonNone      Reason = "none"
	ReasonCheckmate Reason = "checkmate"
	ReasonStalemate Reason = "stalemate"
	ReasonDraw      Reason = "draw"
)

// Verdict is the oracle's answer for one position. Winner is NoColor unless
// Reason is checkmate.
type Verdict struct {
	Over   bool
	Reason Reason
	Winner board.Color
}

// RulesOracle decides whether a position ends the game. The engine core
// treats it as a black box: it never reimplements check or mate detection,
// and an oracle failure must never corrupt game state.
type RulesOracle interface {
	Verdict(ctx context.Context, fen string) (Verdict, error)
}
