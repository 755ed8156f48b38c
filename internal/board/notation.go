package board

import "strings"

// SAN renders the standard algebraic notation for a move about to be played
// on pos. It is derived from the same geometry the applier recognizes, so it
// carries no check/mate suffix and no disambiguation beyond the capture file
// of pawns - the stored history is movetext for humans, not a PGN replayer.
func SAN(pos Position, move Move) string {
	piece := pos.At(move.From)
	if piece.Kind == King && fileDistance(move.From, move.To) == 2 && move.From.Rank() == homeRank(piece.Color) {
		if move.To.File() == 6 {
			return "O-O"
		}
		return "O-O-O"
	}

	captures := pos.At(move.To).Kind != NoKind ||
		(piece.Kind == Pawn && move.From.File() != move.To.File() && move.To == pos.EnPassant)

	var b strings.Builder
	if piece.Kind == Pawn {
		if captures {
			b.WriteByte(byte('a' + move.From.File()))
			b.WriteByte('x')
		}
		b.WriteString(move.To.String())
		if move.Promotion != NoKind {
			b.WriteByte('=')
			b.WriteString(strings.ToUpper(move.Promotion.Letter()))
		}
		return b.String()
	}

	b.WriteString(strings.ToUpper(piece.Kind.Letter()))
	if captures {
		b.WriteByte('x')
	}
	b.WriteString(move.To.String())
	return b.String()
}
