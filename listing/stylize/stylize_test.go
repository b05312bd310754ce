package stylize

import "testing"

func TestStylizeSubstitutesThenUppercases(t *testing.T) {
	table := Table{"a": "@", "c": "K"}
	if got := Stylize(table, "abc"); got != "@BK" {
		t.Fatalf("Stylize = %q, want @BK", got)
	}
}

func TestStylizeLowercasesBeforeLookup(t *testing.T) {
	table := Table{"a": "Å"}
	// Uppercase input must hit the lowercase table entries.
	if got := Stylize(table, "AmAzing"); got != "ÅMÅZING" {
		t.Fatalf("Stylize = %q, want ÅMÅZING", got)
	}
}

func TestStylizePassthrough(t *testing.T) {
	if got := Stylize(Table{"x": "*"}, "b2 b!"); got != "B2 B!" {
		t.Fatalf("unmapped characters must pass through uppercased, got %q", got)
	}
	if got := Stylize(nil, "plain"); got != "PLAIN" {
		t.Fatalf("nil table must still uppercase, got %q", got)
	}
	if got := Stylize(Table{"a": "@"}, ""); got != "" {
		t.Fatalf("empty input must stay empty, got %q", got)
	}
}

func TestStylizeMultiRuneReplacement(t *testing.T) {
	table := Table{"s": "$$"}
	if got := Stylize(table, "sos"); got != "$$O$$" {
		t.Fatalf("Stylize = %q, want $$O$$", got)
	}
}
