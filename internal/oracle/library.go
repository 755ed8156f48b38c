package oracle

import (
	"context"
	"fmt"

	nchess "github.com/corentings/chess/v2"

	"github.com/kapu/world-chess-go/internal/board"
)

// LibraryOracle answers game-over questions with the corentings/chess rules
// implementation. It only ever reads positions; move application stays with
// the engine's own applier.
type LibraryOracle struct{}

func NewLibraryOracle() *LibraryOracle { return &LibraryOracle{} }

func (o *LibraryOracle) Verdict(_ context.Context, fen string) (Verdict, error) {
	fenOpt, err := nchess.FEN(fen)
	if err != nil {
		return Verdict{}, fmt.Errorf("oracle rejected fen: %w", err)
	}
	game := nchess.NewGame(fenOpt)

	switch game.Position().Status() {
	case nchess.Checkmate:
		winner := board.White
		if game.Position().Turn() == nchess.White {
			winner = board.Black
		}
		return Verdict{Over: true, Reason: ReasonCheckmate, Winner: winner}, nil
	case nchess.Stalemate:
		return Verdict{Over: true, Reason: ReasonStalemate}, nil
	}

	// Automatic draws (insufficient material, 75-move rule) surface through
	// the game outcome rather than the position status.
	if game.Outcome() == nchess.Draw {
		return Verdict{Over: true, Reason: ReasonDraw}, nil
	}
	return Verdict{Reason: ReasonNone}, nil
}
