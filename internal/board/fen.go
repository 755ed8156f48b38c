package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kapu/world-chess-go/pkg/gamedto"
)

func malformed(format string, args ...any) error {
	return gamedto.Reject(gamedto.CodeMalformedPosition, fmt.Sprintf(format, args...))
}

// ParseFEN decodes the six-field FEN record into a Position. Any structural
// defect (short record, bad rank arithmetic, unknown symbol) is rejected with
// MALFORMED_POSITION; nothing is guessed or repaired.
func ParseFEN(text string) (Position, error) {
	var pos Position
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) < 6 {
		return pos, malformed("expected 6 fields, got %d", len(fields))
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return pos, malformed("expected 8 ranks, got %d", len(ranks))
	}
	for i, rankText := range ranks {
		rank := 7 - i // FEN lists rank 8 first
		file := 0
		for _, r := range rankText {
			if r >= '1' && r <= '8' {
				file += int(r - '0')
				continue
			}
			piece, ok := pieceFromFEN(r)
			if !ok {
				return pos, malformed("unknown symbol %q in rank %d", string(r), rank+1)
			}
			if file > 7 {
				return pos, malformed("rank %d overflows 8 files", rank+1)
			}
			pos.Squares[SquareAt(file, rank)] = piece
			file++
		}
		if file != 8 {
			return pos, malformed("rank %d sums to %d files", rank+1, file)
		}
	}

	turn, err := ParseColor(fields[1])
	if err != nil {
		return pos, malformed("bad side-to-move %q", fields[1])
	}
	pos.Turn = turn

	if fields[2] != "-" {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				pos.Castling |= CastleWhiteKingside
			case 'Q':
				pos.Castling |= CastleWhiteQueenside
			case 'k':
				pos.Castling |= CastleBlackKingside
			case 'q':
				pos.Castling |= CastleBlackQueenside
			default:
				return pos, malformed("bad castling rights %q", fields[2])
			}
		}
	}

	pos.EnPassant = NoSquare
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return pos, malformed("bad en-passant target %q", fields[3])
		}
		pos.EnPassant = sq
	}

	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 {
		return pos, malformed("bad halfmove clock %q", fields[4])
	}
	pos.HalfMoveClock = half

	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return pos, malformed("bad fullmove number %q", fields[5])
	}
	pos.FullMoveNumber = full

	return pos, nil
}

// FEN encodes the position back into the canonical one-line record. It never
// fails for a structurally valid position, and ParseFEN(p.FEN()) == p.
func (p Position) FEN() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Squares[SquareAt(file, rank)]
			if piece.Kind == NoKind {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(piece.FENLetter())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}

	b.WriteByte(' ')
	b.WriteString(p.Turn.Letter())
	b.WriteByte(' ')
	b.WriteString(p.Castling.String())
	b.WriteByte(' ')
	b.WriteString(p.EnPassant.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.HalfMoveClock))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.FullMoveNumber))
	return b.String()
}
