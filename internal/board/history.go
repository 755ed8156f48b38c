package board

import (
	"strconv"
	"strings"
)

// AppendHistory appends one move to the accumulated movetext, e.g.
// "1. e4 e5 2. Nf3". The move number is derived from the resulting
// position's fullmove counter: white's number is that counter, black's is
// one less (never below 1). A black move continuing the number that already
// closes the history is appended bare; a black move opening a number is
// framed with the PGN ellipsis convention ("3... Nc6").
//
// The function is pure and never re-reads the history beyond its trailing
// number token, so appends stay O(1) in the number of prior moves.
func AppendHistory(history string, mover Color, san string, after Position) string {
	number := after.FullMoveNumber
	if mover == Black {
		number = after.FullMoveNumber - 1
		if number < 1 {
			number = 1
		}
	}

	var entry string
	switch {
	case mover == White:
		entry = strconv.Itoa(number) + ". " + san
	case lastNumberToken(history) == number:
		entry = san
	default:
		entry = strconv.Itoa(number) + "... " + san
	}

	if strings.TrimSpace(history) == "" {
		return entry
	}
	return strings.TrimRight(history, " ") + " " + entry
}

// lastNumberToken finds the move number of the trailing "N." (or "N...")
// token, or 0 when the history has none.
func lastNumberToken(history string) int {
	fields := strings.Fields(history)
	for i := len(fields) - 1; i >= 0; i-- {
		tok := fields[i]
		dot := strings.IndexByte(tok, '.')
		if dot <= 0 {
			continue
		}
		if n, err := strconv.Atoi(tok[:dot]); err == nil {
			// An "N..." token means black already played number N;
			// only a plain "N." leaves the number open for black.
			if strings.HasPrefix(tok[dot:], "...") {
				return 0
			}
			// Open only when exactly one move follows the token.
			if i == len(fields)-2 {
				return n
			}
			return 0
		}
	}
	return 0
}
