// Package matchfinder turns a suffix array over a byte window into, for
// every position, a small Pareto-filtered list of match candidates — spec
// §4.2.
//
// The walk itself (forward and backward through the SA rank neighborhood,
// shrinking the running LCP bound, merging same-length candidates to keep
// only the smallest offset) is grounded on
// OptimalSuffixArraySequencer.getMatches in the ulikunitz/lz reference
// (other_examples/*ulikunitz-lz__osas.go.go); the Finder/Config shape
// (Reset-and-reuse scratch buffers) follows the teacher's
// matcher.LZ4XMatcher.
package matchfinder

import (
	"github.com/harriteja/lz4opt/internal/suffix"
)

const (
	// MinMatchSize is the minimum match length spec §3 mandates.
	MinMatchSize = 4
	// MaxOffset is the largest back-reference distance the LZ4 block
	// format can encode in its 2-byte little-endian offset field.
	MaxOffset = 65535
)

// Candidate is a single (offset, length) match option at some position,
// spec §3's "Match candidate".
type Candidate struct {
	Offset int
	Length int
}

// Config controls how many candidates the finder keeps per position and
// how far a single match may run before diminishing returns stop helping
// the parser (spec §4.2's MAX_MATCH_LEN_BEFORE_DIMINISHING_RETURNS).
type Config struct {
	// MaxCandidatesPerPos bounds the Pareto-filtered list length
	// returned per position, bounding matcher memory to O(W) per spec
	// §5.
	MaxCandidatesPerPos int
	// MaxMatchLen caps any single candidate's length, independent of
	// the 16-bit length-extension encoding limit.
	MaxMatchLen int
}

// DefaultConfig returns sane defaults: enough candidates for the parser to
// make a good choice without unbounded memory.
func DefaultConfig() Config {
	return Config{MaxCandidatesPerPos: 16, MaxMatchLen: 1 << 20}
}

// Finder answers match-candidate queries over a fixed window (dictionary
// prefix + current/previous block), built once per block per spec §4.1's
// "rebuilt per block" lifetime note.
type Finder struct {
	window []byte
	sa     *suffix.Array
	cfg    Config

	// scratch buffers reused across Candidates calls to avoid
	// per-position allocation.
	fwd, back, merged []Candidate
}

// NewFinder builds the suffix array (and its LCP derivative) of window and
// returns a Finder ready to answer Candidates queries against it.
func NewFinder(window []byte, cfg Config) (*Finder, error) {
	sa, err := suffix.Build(window)
	if err != nil {
		return nil, err
	}
	if cfg.MaxCandidatesPerPos <= 0 {
		cfg = DefaultConfig()
	}
	return &Finder{window: window, sa: sa, cfg: cfg}, nil
}

// Candidates returns the Pareto-optimal match candidates available at
// window position p, where the referent must lie strictly before p
// (no-forward-reference, spec §3) and the match may extend at most to
// blockEnd (the current block's end, enforcing §3's "referent lies
// entirely within the current window").
//
// The parser — not this package — is responsible for the "final token is
// literal-only" invariant (spec §3/§9): it always appends a terminal
// literal-only sequence, so a match is free to run all the way to
// blockEnd without leaving the decoder unable to find the block boundary
// (see DESIGN.md's "Last-match tail rule" resolution for why the stricter
// "last 5 bytes must be literal" reading of §4.2 is not load-bearing here).
//
// The result is ordered by decreasing length, then increasing offset —
// the tie-break order spec §4.3 wants the parser to prefer. Each walk
// direction yields a Pareto-optimal list on its own; the merge of the two
// only collapses equal lengths, so a shorter candidate from one direction
// can remain even when a longer one from the other has a smaller offset.
func (f *Finder) Candidates(p, blockEnd int) []Candidate {
	n := len(f.sa.SA)
	if n == 0 || p >= n {
		return nil
	}
	maxLen := blockEnd - p
	if maxLen < MinMatchSize {
		return nil
	}
	if maxLen > f.cfg.MaxMatchLen {
		maxLen = f.cfg.MaxMatchLen
	}

	rank := int(f.sa.Rank[p])

	f.fwd = f.walk(f.fwd[:0], p, rank, maxLen, +1)
	f.back = f.walk(f.back[:0], p, rank, maxLen, -1)
	f.merged = mergeByLength(f.merged[:0], f.fwd, f.back)

	if len(f.merged) > f.cfg.MaxCandidatesPerPos {
		f.merged = f.merged[:f.cfg.MaxCandidatesPerPos]
	}
	out := make([]Candidate, len(f.merged))
	copy(out, f.merged)
	return out
}

// walk scans the suffix-array neighborhood of rank in direction dir
// (+1 forward, -1 backward), shrinking matchLen by the running LCP bound
// and stopping once it falls below MinMatchSize, per spec §4.2's
// "scan forward and backward in SA until either the LCP falls below
// MIN_MATCH_SIZE or the candidate suffix starts after the current
// position (forward reference, skipped)".
func (f *Finder) walk(out []Candidate, p, rank, maxLen, dir int) []Candidate {
	sa, lcp := f.sa.SA, f.sa.LCP
	matchLen := maxLen
	bestOffset := MaxOffset + 1
	j := rank

	for {
		var lcpIdx int
		if dir > 0 {
			if j >= len(lcp) {
				break
			}
			lcpIdx = j
			j++
		} else {
			if j == 0 {
				break
			}
			j--
			lcpIdx = j
		}

		if int(lcp[lcpIdx]) < matchLen {
			matchLen = int(lcp[lcpIdx])
			if matchLen < MinMatchSize {
				break
			}
		}

		start := int(sa[j])
		if start >= p {
			// Forward reference: the referent hasn't been emitted
			// yet by the decoder at this point in the stream.
			continue
		}
		offset := p - start
		if offset < 1 || offset > MaxOffset || offset >= bestOffset {
			continue
		}
		bestOffset = offset

		if len(out) > 0 && out[len(out)-1].Length == matchLen {
			out[len(out)-1].Offset = offset
			continue
		}
		out = append(out, Candidate{Offset: offset, Length: matchLen})
	}

	return out
}

// mergeByLength merges two length-descending candidate lists into one,
// preferring (on equal length) the smaller offset — spec §4.3's tie-break.
func mergeByLength(out, a, b []Candidate) []Candidate {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Length > b[j].Length:
			out = append(out, a[i])
			i++
		case a[i].Length < b[j].Length:
			out = append(out, b[j])
			j++
		default:
			if a[i].Offset <= b[j].Offset {
				out = append(out, a[i])
			} else {
				out = append(out, b[j])
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
