// Package suffix wraps the external suffix-array construction primitive
// spec §4.1 names: build(window) -> SA[0..N], plus its LCP derivative.
//
// The construction algorithm itself is treated as a specified external
// primitive; this package only adapts github.com/ulikunitz/lz/suffix's
// SA-IS implementation to the int-indexed shape the match-finder wants.
package suffix

import (
	"fmt"

	"github.com/ulikunitz/lz/suffix"
)

// MaxWindow is the largest window this package will sort. Spec §3 frames
// the default window as "2*64KiB": a 64 KiB dictionary/prior-block prefix
// plus a 64 KiB current block, which is exact when blockMaxCode=4. Match
// offsets are always bounded to 65535 (the dictionary/prior-block side
// never needs to exceed 64 KiB), but the current block itself can be as
// large as blockMaxCode=7 permits (4 MiB, spec §3's frame header), so the
// window must accommodate a 64 KiB history plus a 4 MiB block.
const MaxWindow = 64*1024 + 4*1024*1024

// Array holds a window's suffix array, its inverse (rank) array, and the
// LCP array between lexicographically adjacent suffixes.
type Array struct {
	// SA[i] is the starting offset (into the window) of the suffix
	// ranked i-th lexicographically.
	SA []int32
	// Rank[p] is the lexicographic rank of the suffix starting at p;
	// the inverse permutation of SA.
	Rank []int32
	// LCP[i] is the longest common prefix length between the suffixes
	// at SA[i] and SA[i+1]. len(LCP) == len(SA)-1.
	LCP []int32
}

// Build constructs the suffix array, inverse array, and LCP array of
// window. window must not exceed MaxWindow bytes.
func Build(window []byte) (*Array, error) {
	n := len(window)
	if n == 0 {
		return &Array{}, nil
	}
	if n > MaxWindow {
		return nil, fmt.Errorf("suffix: window of %d bytes exceeds max %d", n, MaxWindow)
	}

	sa := make([]int32, n)
	suffix.Sort(window, sa)

	rank := make([]int32, n)
	for i, p := range sa {
		rank[p] = int32(i)
	}

	var lcp []int32
	if n > 1 {
		lcp = make([]int32, n-1)
		suffix.LCP(window, sa, nil, lcp)
	}

	return &Array{SA: sa, Rank: rank, LCP: lcp}, nil
}
