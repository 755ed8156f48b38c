package board

import "testing"

func TestAppendHistoryNumberedPairs(t *testing.T) {
	pos := Start()
	history := ""
	moves := []struct {
		from, to string
		mover    Color
	}{
		{"e2", "e4", White},
		{"e7", "e5", Black},
		{"g1", "f3", White},
		{"b8", "c6", Black},
	}
	for _, m := range moves {
		mv := mustMove(t, m.from, m.to, NoKind)
		san := SAN(pos, mv)
		next, err := Apply(pos, mv, m.mover)
		if err != nil {
			t.Fatalf("Apply %s%s: %v", m.from, m.to, err)
		}
		history = AppendHistory(history, m.mover, san, next)
		pos = next
	}
	want := "1. e4 e5 2. Nf3 Nc6"
	if history != want {
		t.Fatalf("history = %q, want %q", history, want)
	}
}

func TestAppendHistoryIdempotentInputs(t *testing.T) {
	after := mustParse(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	a := AppendHistory("", White, "e4", after)
	b := AppendHistory("", White, "e4", after)
	if a != b || a != "1. e4" {
		t.Fatalf("append not deterministic: %q vs %q", a, b)
	}
}

func TestAppendHistoryBlackLeads(t *testing.T) {
	// A black move that does not continue white's number gets the
	// ellipsis framing instead of a bare SAN.
	after := mustParse(t, "rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 4")
	got := AppendHistory("", Black, "e5", after)
	if got != "3... e5" {
		t.Fatalf("black-led history = %q, want %q", got, "3... e5")
	}
}

func TestAppendHistoryNumberFloor(t *testing.T) {
	after := mustParse(t, "rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 1")
	got := AppendHistory("", Black, "e5", after)
	if got != "1... e5" {
		t.Fatalf("floored history = %q", got)
	}
}

func TestSANShapes(t *testing.T) {
	pos := Start()
	if got := SAN(pos, mustMove(t, "e2", "e4", NoKind)); got != "e4" {
		t.Fatalf("pawn push SAN = %q", got)
	}
	if got := SAN(pos, mustMove(t, "g1", "f3", NoKind)); got != "Nf3" {
		t.Fatalf("knight SAN = %q", got)
	}

	castlePos := mustParse(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	if got := SAN(castlePos, mustMove(t, "e1", "g1", NoKind)); got != "O-O" {
		t.Fatalf("castle SAN = %q", got)
	}

	capPos := mustParse(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	if got := SAN(capPos, mustMove(t, "e4", "d5", NoKind)); got != "exd5" {
		t.Fatalf("pawn capture SAN = %q", got)
	}

	promoPos := mustParse(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if got := SAN(promoPos, mustMove(t, "a7", "a8", Queen)); got != "a8=Q" {
		t.Fatalf("promotion SAN = %q", got)
	}

	epPos := mustParse(t, "4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 9")
	if got := SAN(epPos, mustMove(t, "d5", "e6", NoKind)); got != "dxe6" {
		t.Fatalf("en passant SAN = %q", got)
	}
}
