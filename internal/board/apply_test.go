package board

import (
	"strings"
	"testing"

	"github.com/kapu/world-chess-go/pkg/gamedto"
)

func mustParse(t *testing.T, fen string) Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func mustMove(t *testing.T, from, to string, promo PieceKind) Move {
	t.Helper()
	f, err := ParseSquare(from)
	if err != nil {
		t.Fatalf("from %q: %v", from, err)
	}
	sq, err := ParseSquare(to)
	if err != nil {
		t.Fatalf("to %q: %v", to, err)
	}
	return Move{From: f, To: sq, Promotion: promo}
}

func TestApplyDoublePawnAdvance(t *testing.T) {
	// e2e4 from the start: en-passant target e3, clock reset, still move 1.
	next, err := Apply(Start(), mustMove(t, "e2", "e4", NoKind), White)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	fields := strings.Fields(next.FEN())
	if fields[3] != "e3" {
		t.Fatalf("en-passant field = %q, want e3", fields[3])
	}
	if fields[1] != "b" || fields[4] != "0" || fields[5] != "1" {
		t.Fatalf("unexpected metadata fields: %v", fields[1:])
	}
}

func TestApplyKingsideCastle(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/8/4K2R w KQ - 0 1")
	next, err := Apply(pos, mustMove(t, "e1", "g1", NoKind), White)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	g1, _ := ParseSquare("g1")
	f1, _ := ParseSquare("f1")
	h1, _ := ParseSquare("h1")
	e1, _ := ParseSquare("e1")
	if next.At(g1).Kind != King || next.At(f1).Kind != Rook {
		t.Fatalf("castle landed wrong: g1=%+v f1=%+v", next.At(g1), next.At(f1))
	}
	if next.At(h1).Kind != NoKind || next.At(e1).Kind != NoKind {
		t.Fatalf("origin squares not cleared")
	}
	if next.Castling.Has(CastleWhiteKingside) || next.Castling.Has(CastleWhiteQueenside) {
		t.Fatalf("white rights not stripped: %v", next.Castling)
	}
}

func TestApplyCastleKeepsOpponentRights(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	next, err := Apply(pos, mustMove(t, "e1", "g1", NoKind), White)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !next.Castling.Has(CastleBlackKingside) || !next.Castling.Has(CastleBlackQueenside) {
		t.Fatalf("black rights disturbed: %v", next.Castling)
	}
}

func TestApplyQueensideCastle(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 9")
	next, err := Apply(pos, mustMove(t, "e8", "c8", NoKind), Black)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	c8, _ := ParseSquare("c8")
	d8, _ := ParseSquare("d8")
	if next.At(c8).Kind != King || next.At(d8).Kind != Rook {
		t.Fatalf("queenside castle landed wrong: c8=%+v d8=%+v", next.At(c8), next.At(d8))
	}
	if next.Castling.Has(CastleBlackKingside) || next.Castling.Has(CastleBlackQueenside) {
		t.Fatalf("black rights not stripped")
	}
	if next.FullMoveNumber != 10 {
		t.Fatalf("fullmove = %d, want 10", next.FullMoveNumber)
	}
}

func TestApplyEnPassantCapture(t *testing.T) {
	// White pawn on d5; black answers e7e5; d5xe6 must lift the pawn off e5.
	pos := mustParse(t, "4k3/4p3/8/3P4/8/8/8/4K3 b - - 0 8")
	afterBlack, err := Apply(pos, mustMove(t, "e7", "e5", NoKind), Black)
	if err != nil {
		t.Fatalf("black advance: %v", err)
	}
	e6, _ := ParseSquare("e6")
	if afterBlack.EnPassant != e6 {
		t.Fatalf("en-passant target = %v, want e6", afterBlack.EnPassant)
	}

	afterWhite, err := Apply(afterBlack, mustMove(t, "d5", "e6", NoKind), White)
	if err != nil {
		t.Fatalf("en passant capture: %v", err)
	}
	e5, _ := ParseSquare("e5")
	if afterWhite.At(e5).Kind != NoKind {
		t.Fatalf("captured pawn still on e5: %+v", afterWhite.At(e5))
	}
	if afterWhite.At(e6) != (Piece{Color: White, Kind: Pawn}) {
		t.Fatalf("capturing pawn not on e6: %+v", afterWhite.At(e6))
	}
	if afterWhite.HalfMoveClock != 0 {
		t.Fatalf("halfmove clock = %d after capture", afterWhite.HalfMoveClock)
	}
	if afterWhite.EnPassant != NoSquare {
		t.Fatalf("en-passant target not cleared one ply later")
	}
}

func TestEnPassantTargetClearedNextPly(t *testing.T) {
	next, err := Apply(Start(), mustMove(t, "e2", "e4", NoKind), White)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// Any reply clears the target, not just a capture.
	after, err := Apply(next, mustMove(t, "g8", "f6", NoKind), Black)
	if err != nil {
		t.Fatalf("Apply reply: %v", err)
	}
	if after.EnPassant != NoSquare {
		t.Fatalf("en-passant target survived a ply: %v", after.EnPassant)
	}
}

func TestApplyPromotion(t *testing.T) {
	pos := mustParse(t, "4k3/P7/8/8/8/8/8/4K3 w - - 4 30")

	if _, err := Apply(pos, mustMove(t, "a7", "a8", NoKind), White); gamedto.CodeOf(err) != gamedto.CodePromotionRequired {
		t.Fatalf("expected PROMOTION_REQUIRED, got %v", err)
	}
	if _, err := Apply(pos, mustMove(t, "a7", "a8", King), White); gamedto.CodeOf(err) != gamedto.CodeInvalidPromotion {
		t.Fatalf("expected INVALID_PROMOTION, got %v", err)
	}

	next, err := Apply(pos, mustMove(t, "a7", "a8", Queen), White)
	if err != nil {
		t.Fatalf("Apply promotion: %v", err)
	}
	a8, _ := ParseSquare("a8")
	if next.At(a8) != (Piece{Color: White, Kind: Queen}) {
		t.Fatalf("promoted piece = %+v", next.At(a8))
	}
	if next.HalfMoveClock != 0 {
		t.Fatalf("pawn move did not reset clock")
	}
}

func TestApplyRejections(t *testing.T) {
	pos := Start()

	if _, err := Apply(pos, mustMove(t, "e7", "e5", NoKind), Black); gamedto.CodeOf(err) != gamedto.CodeWrongTurn {
		t.Fatalf("expected WRONG_TURN, got %v", err)
	}
	if _, err := Apply(pos, mustMove(t, "e4", "e5", NoKind), White); gamedto.CodeOf(err) != gamedto.CodeNoPieceAtSource {
		t.Fatalf("expected NO_PIECE_AT_SOURCE, got %v", err)
	}
	if _, err := Apply(pos, mustMove(t, "e7", "e6", NoKind), White); gamedto.CodeOf(err) != gamedto.CodeColorMismatch {
		t.Fatalf("expected COLOR_MISMATCH, got %v", err)
	}
	if _, err := Apply(pos, mustMove(t, "e2", "e2", NoKind), White); gamedto.CodeOf(err) != gamedto.CodeIllegalGeometry {
		t.Fatalf("expected ILLEGAL_GEOMETRY, got %v", err)
	}

	// Rejections never mutate the input position.
	if pos != Start() {
		t.Fatalf("position mutated by rejected move")
	}
}

func TestCastlingRightsMonotonic(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	// White rook leaves h1, right K drops and never returns.
	next, err := Apply(pos, mustMove(t, "h1", "h4", NoKind), White)
	if err != nil {
		t.Fatalf("rook move: %v", err)
	}
	if next.Castling.Has(CastleWhiteKingside) {
		t.Fatalf("K right survived rook move")
	}
	// Rook returning home must not restore the right.
	next, err = Apply(next, mustMove(t, "a8", "a6", NoKind), Black)
	if err != nil {
		t.Fatalf("black reply: %v", err)
	}
	if next.Castling.Has(CastleBlackQueenside) {
		t.Fatalf("q right survived rook move")
	}
	next, err = Apply(next, mustMove(t, "h4", "h1", NoKind), White)
	if err != nil {
		t.Fatalf("rook return: %v", err)
	}
	if next.Castling.Has(CastleWhiteKingside) {
		t.Fatalf("K right restored after rook returned")
	}
}

func TestCaptureOnCornerStripsVictimRight(t *testing.T) {
	pos := mustParse(t, "r3k3/8/8/8/8/8/8/R3K2B w Qq - 0 1")
	// Bishop takes the a8 rook: black loses q without moving.
	next, err := Apply(pos, mustMove(t, "h1", "a8", NoKind), White)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next.Castling.Has(CastleBlackQueenside) {
		t.Fatalf("q right survived rook capture")
	}
	if !next.Castling.Has(CastleWhiteQueenside) {
		t.Fatalf("white Q right lost without cause")
	}
}

func TestHalfMoveClockAccounting(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/8/R3K3 w - - 5 40")
	next, err := Apply(pos, mustMove(t, "a1", "a4", NoKind), White)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next.HalfMoveClock != 6 {
		t.Fatalf("quiet rook move clock = %d, want 6", next.HalfMoveClock)
	}
	if next.FullMoveNumber != 40 {
		t.Fatalf("fullmove advanced after a white move")
	}
}
