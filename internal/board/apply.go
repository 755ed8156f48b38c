package board

import (
	"fmt"

	"github.com/kapu/world-chess-go/pkg/gamedto"
)

// Move is one structurally validated instruction: origin, destination and,
// when a pawn reaches its final rank, the promotion piece.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += m.Promotion.Letter()
	}
	return s
}

// Apply plays one move for mover on pos and returns the successor position.
//
// Legality beyond structure is trusted to have been checked upstream: Apply
// never searches, never looks for checks or pins, and never verifies that a
// sliding piece's path is clear. Its contract is narrower and absolute - a
// structurally valid instruction always yields a consistent position, and
// every structurally invalid one is rejected without side effects.
func Apply(pos Position, move Move, mover Color) (Position, error) {
	if !move.From.Valid() || !move.To.Valid() || move.From == move.To {
		return pos, gamedto.Reject(gamedto.CodeIllegalGeometry,
			fmt.Sprintf("unusable move %s", move))
	}
	if mover != pos.Turn {
		return pos, gamedto.Reject(gamedto.CodeWrongTurn,
			fmt.Sprintf("%s moved on %s's turn", mover, pos.Turn))
	}

	piece := pos.At(move.From)
	if piece.Kind == NoKind {
		return pos, gamedto.Reject(gamedto.CodeNoPieceAtSource,
			fmt.Sprintf("no piece on %s", move.From))
	}
	if piece.Color != mover {
		return pos, gamedto.Reject(gamedto.CodeColorMismatch,
			fmt.Sprintf("piece on %s belongs to %s", move.From, piece.Color))
	}

	promoting := piece.Kind == Pawn && move.To.Rank() == finalRank(mover)
	if promoting {
		switch move.Promotion {
		case Queen, Rook, Bishop, Knight:
		case NoKind:
			return pos, gamedto.Reject(gamedto.CodePromotionRequired,
				fmt.Sprintf("pawn to %s requires a promotion piece", move.To))
		default:
			return pos, gamedto.Reject(gamedto.CodeInvalidPromotion,
				fmt.Sprintf("cannot promote to %v", move.Promotion))
		}
	}

	next := pos
	captured := next.At(move.To).Kind != NoKind

	switch {
	case piece.Kind == King && fileDistance(move.From, move.To) == 2 && move.From.Rank() == homeRank(mover):
		// Castling: king and rook relocate together, both rights drop.
		next.Squares[move.From] = Piece{}
		next.Squares[move.To] = piece
		rookFrom, rookTo := castlingRookSquares(mover, move.To)
		next.Squares[rookTo] = next.Squares[rookFrom]
		next.Squares[rookFrom] = Piece{}

	case piece.Kind == Pawn && move.From.File() != move.To.File() &&
		pos.At(move.To).Kind == NoKind && move.To == pos.EnPassant:
		// En passant: the captured pawn sits behind the destination,
		// one rank back toward the mover.
		next.Squares[move.From] = Piece{}
		next.Squares[move.To] = piece
		next.Squares[SquareAt(move.To.File(), move.To.Rank()-pawnDirection(mover))] = Piece{}
		captured = true

	default:
		next.Squares[move.From] = Piece{}
		placed := piece
		if promoting {
			placed.Kind = move.Promotion
		}
		next.Squares[move.To] = placed
	}

	next.Castling = updateCastlingRights(pos.Castling, piece, move, mover)

	next.EnPassant = NoSquare
	if piece.Kind == Pawn && move.From.Rank() == pawnHomeRank(mover) &&
		move.To.Rank() == pawnHomeRank(mover)+2*pawnDirection(mover) {
		next.EnPassant = SquareAt(move.From.File(), move.From.Rank()+pawnDirection(mover))
	}

	if piece.Kind == Pawn || captured {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock = pos.HalfMoveClock + 1
	}

	if mover == Black {
		next.FullMoveNumber = pos.FullMoveNumber + 1
	}

	next.Turn = mover.Opposite()
	return next, nil
}

func updateCastlingRights(rights CastlingRights, piece Piece, move Move, mover Color) CastlingRights {
	if piece.Kind == King {
		if mover == White {
			rights &^= CastleWhiteKingside | CastleWhiteQueenside
		} else {
			rights &^= CastleBlackKingside | CastleBlackQueenside
		}
	}
	// A rook leaving its corner, or any capture landing on a corner,
	// strips the matching right. Cleared only, never restored.
	for _, sq := range []Square{move.From, move.To} {
		switch sq {
		case SquareAt(7, 0):
			rights &^= CastleWhiteKingside
		case SquareAt(0, 0):
			rights &^= CastleWhiteQueenside
		case SquareAt(7, 7):
			rights &^= CastleBlackKingside
		case SquareAt(0, 7):
			rights &^= CastleBlackQueenside
		}
	}
	return rights
}

func castlingRookSquares(mover Color, kingTo Square) (from, to Square) {
	rank := homeRank(mover)
	if kingTo.File() == 6 { // kingside
		return SquareAt(7, rank), SquareAt(5, rank)
	}
	return SquareAt(0, rank), SquareAt(3, rank)
}

func fileDistance(a, b Square) int {
	d := a.File() - b.File()
	if d < 0 {
		d = -d
	}
	return d
}

func homeRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func finalRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

func pawnHomeRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}
