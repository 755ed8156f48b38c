package board

import (
	"fmt"
	"strings"
)

// Color identifies a side. The zero value means "no color" (empty square).
type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

// Letter returns the FEN side-to-move letter.
func (c Color) Letter() string {
	if c == White {
		return "w"
	}
	return "b"
}

func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// ParseColor accepts "white"/"black" and the FEN letters "w"/"b".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Color) UnmarshalJSON(raw []byte) error {
	s := strings.Trim(string(raw), `"`)
	if s == "" || s == "null" {
		*c = NoColor
		return nil
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PieceKind is the piece type without color.
type PieceKind int8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[PieceKind]string{
	Pawn:   "p",
	Knight: "n",
	Bishop: "b",
	Rook:   "r",
	Queen:  "q",
	King:   "k",
}

// Letter returns the lowercase FEN letter for the kind.
func (k PieceKind) Letter() string { return kindLetters[k] }

// ParsePromotion maps a promotion designator to a piece kind. Only the four
// promotable kinds are accepted.
func ParsePromotion(s string) (PieceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "queen":
		return Queen, true
	case "r", "rook":
		return Rook, true
	case "b", "bishop":
		return Bishop, true
	case "n", "knight":
		return Knight, true
	}
	return NoKind, false
}

// Piece is a colored piece. The zero value is the empty square.
type Piece struct {
	Color Color
	Kind  PieceKind
}

// FENLetter returns the single-letter FEN symbol (uppercase for white).
func (p Piece) FENLetter() string {
	l := p.Kind.Letter()
	if p.Color == White {
		return strings.ToUpper(l)
	}
	return l
}

func pieceFromFEN(r rune) (Piece, bool) {
	color := Black
	lower := r
	if r >= 'A' && r <= 'Z' {
		color = White
		lower = r + ('a' - 'A')
	}
	for kind, letter := range kindLetters {
		if rune(letter[0]) == lower {
			return Piece{Color: color, Kind: kind}, true
		}
	}
	return Piece{}, false
}

// Square indexes the board 0..63, a1=0, h1=7, a8=56. NoSquare marks "none"
// (e.g. no en-passant target).
type Square int8

const NoSquare Square = -1

// SquareAt builds a square from zero-based file (a=0) and rank (1st=0).
func SquareAt(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string(rune('a'+s.File())) + string(rune('1'+s.Rank()))
}

// ParseSquare parses algebraic coordinates like "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return SquareAt(int(s[0]-'a'), int(s[1]-'1')), nil
}

// CastlingRights is the KQkq bitmask. Rights are only ever cleared during a
// game, never restored.
type CastlingRights uint8

const (
	CastleWhiteKingside CastlingRights = 1 << iota
	CastleWhiteQueenside
	CastleBlackKingside
	CastleBlackQueenside

	CastleAll = CastleWhiteKingside | CastleWhiteQueenside | CastleBlackKingside | CastleBlackQueenside
)

func (c CastlingRights) Has(r CastlingRights) bool { return c&r != 0 }

func (c CastlingRights) String() string {
	if c == 0 {
		return "-"
	}
	var b strings.Builder
	if c.Has(CastleWhiteKingside) {
		b.WriteByte('K')
	}
	if c.Has(CastleWhiteQueenside) {
		b.WriteByte('Q')
	}
	if c.Has(CastleBlackKingside) {
		b.WriteByte('k')
	}
	if c.Has(CastleBlackQueenside) {
		b.WriteByte('q')
	}
	return b.String()
}

// Position is the complete state needed to continue play. It is a value type
// and comparable, so decode/encode round trips can be checked with ==.
type Position struct {
	Squares        [64]Piece
	Turn           Color
	Castling       CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
}

// At returns the piece on sq (the zero Piece for empty squares).
func (p Position) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return p.Squares[sq]
}

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Start returns the standard initial position.
func Start() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}
