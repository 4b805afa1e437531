package matchfinder

import "testing"

func TestCandidatesNoMatchAtFirstOccurrence(t *testing.T) {
	f, err := NewFinder([]byte("abcdefgh"), DefaultConfig())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	if got := f.Candidates(0, 8); len(got) != 0 {
		t.Errorf("Candidates(0, ...) = %v, want none (no prior occurrence)", got)
	}
}

func TestCandidatesRepeatedByte(t *testing.T) {
	f, err := NewFinder([]byte("aaaaaaaa"), DefaultConfig())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	got := f.Candidates(1, 8)
	if len(got) == 0 {
		t.Fatal("Candidates(1, ...) = none, want at least one match")
	}
	best := got[0]
	if best.Offset != 1 || best.Length != 7 {
		t.Errorf("best candidate = %+v, want Offset=1 Length=7", best)
	}
}

func TestCandidatesRespectMaxOffset(t *testing.T) {
	window := make([]byte, 200000)
	for i := range window {
		window[i] = byte(i % 7)
	}
	f, err := NewFinder(window, DefaultConfig())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	for _, c := range f.Candidates(len(window)-100, len(window)) {
		if c.Offset < 1 || c.Offset > MaxOffset {
			t.Errorf("candidate offset %d out of range [1, %d]", c.Offset, MaxOffset)
		}
	}
}

func TestCandidatesOrderedByDescendingLength(t *testing.T) {
	f, err := NewFinder([]byte("abcabcabcxabcabc"), DefaultConfig())
	if err != nil {
		t.Fatalf("NewFinder() error = %v", err)
	}
	got := f.Candidates(10, 16)
	for i := 1; i < len(got); i++ {
		if got[i].Length > got[i-1].Length {
			t.Errorf("candidates not sorted by descending length: %+v", got)
		}
	}
}
