package oracle

import (
	"context"
	"testing"

	"github.com/kapu/world-chess-go/internal/board"
)

func TestLibraryOracleVerdicts(t *testing.T) {
	o := NewLibraryOracle()
	ctx := context.Background()

	// Fool's mate: white to move and checkmated.
	v, err := o.Verdict(ctx, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if !v.Over || v.Reason != ReasonCheckmate || v.Winner != board.Black {
		t.Fatalf("checkmate verdict = %+v", v)
	}

	// Classic queen stalemate.
	v, err = o.Verdict(ctx, "k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	if err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if !v.Over || v.Reason != ReasonStalemate || v.Winner != board.NoColor {
		t.Fatalf("stalemate verdict = %+v", v)
	}

	// Ongoing game.
	v, err = o.Verdict(ctx, board.StartFEN)
	if err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if v.Over || v.Reason != ReasonNone {
		t.Fatalf("start verdict = %+v", v)
	}

	if _, err := o.Verdict(ctx, "not a fen"); err == nil {
		t.Fatalf("expected error for malformed fen")
	}
}
