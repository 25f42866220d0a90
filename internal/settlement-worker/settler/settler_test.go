package settler

import "testing"

func TestWinnerOptionKey(t *testing.T) {
	cases := []struct {
		winner string
		key    string
		ok     bool
	}{
		{"home", "home", true},
		{"away", "away", true},
		{"draw", "draw", true},
		{"HOME", "", false},
		{"", "", false},
		{"postponed", "", false},
	}
	for _, c := range cases {
		key, ok := WinnerOptionKey(c.winner)
		if key != c.key || ok != c.ok {
			t.Fatalf("WinnerOptionKey(%q) = (%q, %v), esperado (%q, %v)", c.winner, key, ok, c.key, c.ok)
		}
	}
}

func TestOutcomeCode(t *testing.T) {
	if got := OutcomeCode(2, 1); got != "2-1" {
		t.Fatalf("OutcomeCode(2,1) = %q", got)
	}
	if got := OutcomeCode(0, 0); got != "0-0" {
		t.Fatalf("OutcomeCode(0,0) = %q", got)
	}
}
