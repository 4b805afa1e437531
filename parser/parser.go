// Package parser implements the optimal (minimum-cost) parse of a block
// into LZ4 literal-run/match sequences — spec §4.3.
//
// Shape grounded on optSuffixArrayParser.shortestPath in
// other_examples/*ulikunitz-lz__osap.go.go: a position-indexed cost table
// filled by walking candidate edges, then a backward walk reconstructing
// the chosen path. Two things differ from that reference on purpose:
//
//  1. LZ4's cost function is not a pluggable per-edge callback — it is
//     shaped by the shared token byte and by literal-run-length encoding
//     (spec §4.3's cost function), so the recurrence itself is rewritten
//     for LZ4 rather than reusing XZCost.
//  2. This implementation fills the cost table left-to-right as an
//     arrivals table (spec §3's Data Model: "cost[p] = minimum total bits
//     to encode the block prefix ending at p"), rather than right-to-left
//     as spec §4.3's prose algorithm describes. Both directions solve the
//     same shortest-path DAG; the left-to-right form is what lets a
//     single pass track, per position, the length of the literal run
//     that arrived there (see runLen below) so the variable-length run
//     encoding cost is charged exactly once, incrementally, instead of
//     needing a second corrective pass. This choice is recorded as an
//     Open Question resolution in DESIGN.md.
package parser

import "github.com/harriteja/lz4opt/matchfinder"

// CommandKind distinguishes the two edge types spec §4.3 defines.
type CommandKind int

const (
	// KindLiteral is a literal-run-only command: the final command of
	// a block, or (in principle) any point where no match follows.
	KindLiteral CommandKind = iota
	// KindMatch is a (literal-run, match) pair sharing one token.
	KindMatch
)

// Command is one parsed (literal-run[, match]) step, spec §4.3's output.
type Command struct {
	Kind CommandKind
	// LitStart, LitLen describe the literal run preceding (and, for
	// KindLiteral, terminating) this command.
	LitStart, LitLen int
	// Offset, MatchLen are populated only for KindMatch.
	Offset, MatchLen int
}

const minMatchSize = matchfinder.MinMatchSize

// extraRunBytes is spec §4.3's run-length-extension cost: 0 bytes if
// n < 15, else one 0xFF byte per full 255 plus one terminating byte.
func extraRunBytes(n int) int {
	if n < 15 {
		return 0
	}
	return 1 + (n-15)/255
}

// candidateSource supplies match candidates at a position; matchfinder.Finder
// satisfies this, tests can fake it.
type candidateSource interface {
	Candidates(p, blockEnd int) []matchfinder.Candidate
}

// Parse computes the minimum-cost sequence of commands encoding
// block[0:blockLen], given a candidate source built over a window whose
// current block occupies [windowBase, windowBase+blockLen). It returns
// the command list and the total encoded size of the block in bytes; the
// number of commands (tokens) is len of the returned list.
func Parse(finder candidateSource, windowBase, blockLen int) ([]Command, int) {
	if blockLen == 0 {
		return nil, 0
	}

	L := blockLen
	const inf = int(^uint(0) >> 1)

	cost := make([]int, L+1)
	runLen := make([]int, L+1)
	// viaOffset[p] == 0 means p was reached by extending a literal run
	// by one byte from p-1; otherwise p was reached by a match of
	// viaLen[p] bytes at offset viaOffset[p] starting at p-viaLen[p].
	viaOffset := make([]int, L+1)
	viaLen := make([]int, L+1)

	for p := 1; p <= L; p++ {
		cost[p] = inf
	}

	for p := 0; p < L; p++ {
		// Literal edge p -> p+1: extend the open run by one byte.
		// extraRunBytes is monotone non-decreasing, so summing its
		// deltas along a chain of literal edges telescopes to
		// extraRunBytes(finalRunLen) exactly once.
		newRun := runLen[p] + 1
		delta := extraRunBytes(newRun) - extraRunBytes(runLen[p])
		c := addCost(cost[p], 1+delta)
		if better(c, cost[p+1]) {
			cost[p+1], runLen[p+1] = c, newRun
			viaOffset[p+1], viaLen[p+1] = 0, 0
		}

		// Match edges p -> p+k: the shared token's cost (1) plus the
		// 2-byte offset plus the match's own run-length extension,
		// per spec §4.3's cost function. The literal run ending at p
		// (if any) was already fully charged via the literal edges
		// above, including its extraRunBytes — see package doc.
		for _, cand := range finder.Candidates(windowBase+p, windowBase+L) {
			k := cand.Length
			if k < minMatchSize || p+k > L {
				continue
			}
			mc := addCost(cost[p], 3+extraRunBytes(k-minMatchSize))
			target := p + k
			if better(mc, cost[target]) ||
				(mc == cost[target] && tieBreakBetter(k, cand.Offset, viaLen[target], viaOffset[target])) {
				cost[target], runLen[target] = mc, 0
				viaOffset[target], viaLen[target] = cand.Offset, k
			}
		}
	}

	// The terminal sequence's token byte is never charged by a literal
	// edge (those only pay for run bytes and run-length extensions),
	// so it is added exactly once here, spec §3's "final token ... no
	// match" requirement.
	total := cost[L] + 1

	return reconstruct(viaOffset, viaLen, L), total
}

func addCost(base, delta int) int {
	const inf = int(^uint(0) >> 1)
	if base >= inf {
		return inf
	}
	return base + delta
}

func better(newCost, curCost int) bool {
	return newCost < curCost
}

// tieBreakBetter applies spec §4.3's tie-break (prefer larger match
// length, then smaller offset) when two match edges land on the same
// position with identical total cost.
func tieBreakBetter(newLen, newOffset, curLen, curOffset int) bool {
	if curLen == 0 {
		// current arrival wasn't via a match; a match landing here
		// with equal cost is preferred since it advances the parse
		// by more than one literal byte for the same price.
		return true
	}
	if newLen != curLen {
		return newLen > curLen
	}
	return newOffset < curOffset
}

func reconstruct(viaOffset, viaLen []int, L int) []Command {
	type edge struct {
		offset, length int // length == 0 means a single literal byte
	}
	var edges []edge
	p := L
	for p > 0 {
		if viaOffset[p] != 0 || viaLen[p] > 0 {
			edges = append(edges, edge{offset: viaOffset[p], length: viaLen[p]})
			p -= viaLen[p]
		} else {
			edges = append(edges, edge{})
			p--
		}
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	var cmds []Command
	litStart := 0
	litLen := 0
	pos := 0
	for _, e := range edges {
		if e.length == 0 {
			litLen++
			pos++
			continue
		}
		cmds = append(cmds, Command{
			Kind:     KindMatch,
			LitStart: litStart,
			LitLen:   litLen,
			Offset:   e.offset,
			MatchLen: e.length,
		})
		pos += e.length
		litStart = pos
		litLen = 0
	}
	cmds = append(cmds, Command{Kind: KindLiteral, LitStart: litStart, LitLen: litLen})
	return cmds
}
