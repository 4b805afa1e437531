package parser

import (
	"testing"

	"github.com/harriteja/lz4opt/matchfinder"
)

func newFinder(t *testing.T, window []byte) *matchfinder.Finder {
	t.Helper()
	f, err := matchfinder.NewFinder(window, matchfinder.DefaultConfig())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	return f
}

func sumLens(cmds []Command) int {
	n := 0
	for _, c := range cmds {
		n += c.LitLen
		if c.Kind == KindMatch {
			n += c.MatchLen
		}
	}
	return n
}

func TestParseTokenConservation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single byte", []byte("x")},
		{"eight identical bytes", []byte("aaaaaaaa")},
		{"four identical bytes", []byte("aaaa")},
		{"no repeats", []byte("abcdefgh")},
		{"mixed", []byte("abcabcabcabcxyz")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := newFinder(t, tt.data)
			cmds, _ := Parse(finder, 0, len(tt.data))
			if got := sumLens(cmds); got != len(tt.data) {
				t.Errorf("token conservation: sum of lengths = %d, want %d", got, len(tt.data))
			}
			if len(tt.data) > 0 {
				if len(cmds) == 0 || cmds[len(cmds)-1].Kind != KindLiteral {
					t.Errorf("final command must be a literal-only token, got %+v", cmds)
				}
			}
		})
	}
}

func TestParseEightAsChoosesSingleMatch(t *testing.T) {
	data := []byte("aaaaaaaa")
	finder := newFinder(t, data)
	cmds, _ := Parse(finder, 0, len(data))

	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands (match + trailing literal-only), got %d: %+v", len(cmds), cmds)
	}
	if cmds[0].Kind != KindMatch || cmds[0].LitLen != 1 || cmds[0].Offset != 1 || cmds[0].MatchLen != 7 {
		t.Errorf("first command = %+v, want Match{LitLen:1, Offset:1, MatchLen:7}", cmds[0])
	}
	if cmds[1].Kind != KindLiteral || cmds[1].LitLen != 0 {
		t.Errorf("trailing command = %+v, want empty literal-only", cmds[1])
	}
}

func TestParseNoForwardReferences(t *testing.T) {
	data := []byte("abcabcabcabcabc")
	finder := newFinder(t, data)
	cmds, _ := Parse(finder, 0, len(data))

	pos := 0
	for _, c := range cmds {
		pos += c.LitLen
		if c.Kind == KindMatch {
			if c.Offset > pos {
				t.Errorf("match at output position %d has offset %d, which would reference before start", pos, c.Offset)
			}
			pos += c.MatchLen
		}
	}
}

func TestExtraRunBytes(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{14, 0},
		{15, 1},
		{269, 1},
		{270, 2},
	}
	for _, tt := range tests {
		if got := extraRunBytes(tt.n); got != tt.want {
			t.Errorf("extraRunBytes(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
