// Package wildcopy provides the decoder's fast overcopy primitive and CPU
// feature probing used to report it in verbose summaries.
//
// Adapted from the teacher's v04/simd package: that package's "SSE"/"NEON"
// copiers were already plain copy() calls under SIMD-sounding names (no
// assembly), so this generalizes them into the explicit, bounds-checked
// slice copy spec §9's "Hot copy loops" note calls for ("in a memory-safe
// target, express as explicit slice-copies guarded by the same end
// check; do not emit unchecked indexing"), while keeping the CPU feature
// detection the teacher wired through golang.org/x/sys/cpu.
package wildcopy

// Stride is the overcopy granularity the decoder's fast loop uses. LZ4's
// own reference decoder overcopies 16 bytes at a time; Stride matches that
// regardless of detected CPU features, since the copy below is plain Go
// and gains nothing from wider SIMD registers without actual assembly.
const Stride = 16

// Margin is how far before the true end of a buffer the fast loop must
// stop, to guarantee every Copy16 call it issues stays in bounds (16 bytes
// of overcopy plus slack for the token/offset bytes that precede a copy).
const Margin = 20

// Copy16 copies exactly 16 bytes from src to dst. Both slices must have at
// least 16 bytes available; callers are responsible for the bounds check
// (FastEnd computes one such limit; block's copyMatch instead stops its
// loop Stride bytes before the match end), matching spec's requirement
// that overcopy never read or write past a checked boundary.
func Copy16(dst, src []byte) {
	_ = src[15]
	_ = dst[15]
	copy(dst[:16], src[:16])
}

// FastEnd returns the last source index at which a 16-byte fast-path copy
// may still safely start, given a buffer of length n. Positions >= FastEnd
// must fall back to the byte-correct slow loop.
func FastEnd(n int) int {
	e := n - Margin
	if e < 0 {
		return 0
	}
	return e
}
