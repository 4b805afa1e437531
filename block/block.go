// Package block implements LZ4 block encoding and decoding — spec §4
// (Data Model) and §4.4/§4.5. The token/run-length byte layout and the
// main encode loop are grounded on the teacher's
// compress.Block.CompressToBuffer (compress/block.go); here the greedy
// match search is replaced by the optimal parser package's command list,
// per spec §4.3's "the parser decides, the encoder only serializes."
package block

import (
	"errors"
	"fmt"

	"github.com/harriteja/lz4opt/internal/suffix"
	"github.com/harriteja/lz4opt/internal/wildcopy"
	"github.com/harriteja/lz4opt/matchfinder"
	"github.com/harriteja/lz4opt/parser"
)

const (
	// MinMatchSize mirrors matchfinder.MinMatchSize for callers that only
	// import block.
	MinMatchSize = matchfinder.MinMatchSize
	// MaxInputSize is the largest single block this package will encode,
	// matching the suffix array window cap (internal/suffix.MaxWindow)
	// split across dictionary + block.
	MaxInputSize = suffix.MaxWindow
)

var (
	// ErrInputTooLarge is returned when the input (plus dictionary) would
	// overflow the suffix array window.
	ErrInputTooLarge = errors.New("block: input exceeds maximum window size")
	// ErrMalformedBlock is returned by Decode on any structurally invalid
	// input: truncated token/run-length/offset fields, an offset of zero,
	// or a match referencing before the start of the window.
	ErrMalformedBlock = errors.New("block: malformed compressed block")
	// ErrShortDst is returned by Decode when dst is not large enough and
	// growing it would exceed the maxSize cap given by the caller.
	ErrShortDst = errors.New("block: decompressed size exceeds maxSize")
)

// Options controls block-level encoding, spec §4.2's matcher tuning plus
// dictionary-prefix support (spec §7).
type Options struct {
	// Dict is an optional dictionary prefix: up to 65535 bytes of history
	// the match finder may reference but which is never itself emitted.
	Dict []byte
	// MatchConfig tunes the underlying matchfinder.Finder.
	MatchConfig matchfinder.Config
}

// Encode compresses src into the LZ4 block format, returning the
// compressed bytes appended to dst (dst may be nil) and the number of
// tokens (literal-run/match commands) the parse produced, for callers
// that report it (spec §6's verbose token-count summary). It builds a
// suffix array over Dict+src, computes the optimal parse via the parser
// package, and serializes the resulting commands.
func Encode(dst, src []byte, opts Options) ([]byte, int, error) {
	window, base, err := buildWindow(opts.Dict, src)
	if err != nil {
		return nil, 0, err
	}

	finder, err := matchfinder.NewFinder(window, opts.MatchConfig)
	if err != nil {
		return nil, 0, err
	}

	cmds, _ := parser.Parse(finder, base, len(src))
	out, err := serialize(dst, src, cmds)
	return out, len(cmds), err
}

func buildWindow(dict, src []byte) (window []byte, base int, err error) {
	if len(dict)+len(src) > MaxInputSize {
		return nil, 0, ErrInputTooLarge
	}
	if len(dict) == 0 {
		return src, 0, nil
	}
	w := make([]byte, len(dict)+len(src))
	copy(w, dict)
	copy(w[len(dict):], src)
	return w, len(dict), nil
}

func serialize(dst, src []byte, cmds []parser.Command) ([]byte, error) {
	worst := len(src) + len(src)/255 + 16
	if cap(dst)-len(dst) < worst {
		grown := make([]byte, len(dst), len(dst)+worst)
		copy(grown, dst)
		dst = grown
	}

	for _, c := range cmds {
		litLen := c.LitLen
		var tokenMatchLen int
		if c.Kind == parser.KindMatch {
			tokenMatchLen = c.MatchLen - MinMatchSize
		}

		litCode := litLen
		if litCode > 15 {
			litCode = 15
		}
		matchCode := tokenMatchLen
		if matchCode > 15 {
			matchCode = 15
		}
		dst = append(dst, byte(litCode<<4|matchCode))

		if litLen >= 15 {
			dst = appendRunLength(dst, litLen-15)
		}
		dst = append(dst, src[c.LitStart:c.LitStart+litLen]...)

		if c.Kind != parser.KindMatch {
			continue
		}
		dst = append(dst, byte(c.Offset), byte(c.Offset>>8))
		if tokenMatchLen >= 15 {
			dst = appendRunLength(dst, tokenMatchLen-15)
		}
	}
	return dst, nil
}

func appendRunLength(dst []byte, remaining int) []byte {
	for remaining >= 255 {
		dst = append(dst, 255)
		remaining -= 255
	}
	return append(dst, byte(remaining))
}

// Decode decompresses an LZ4 block from src, returning the decompressed
// bytes. dict, if non-empty, is treated as history already "emitted"
// before src's first byte: match offsets may reach into it, but it is
// never included in the returned slice (spec §4.6's dependent-block
// mode and dictionary-prefix support). maxSize bounds the total
// dict+decompressed size; maxSize <= 0 defaults to len(dict)+64 KiB.
func Decode(dst, src, dict []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = len(dict) + 64*1024
	}
	if dst == nil || cap(dst) < len(dict)+64 {
		dst = make([]byte, 0, len(dict)+min(maxSize, 4096))
	}
	dst = append(dst[:0], dict...)
	dictLen := len(dict)

	srcPos := 0
	for srcPos < len(src) {
		token := src[srcPos]
		srcPos++

		litLen := int(token >> 4)
		if litLen == 15 {
			n, np, err := readRunLength(src, srcPos)
			if err != nil {
				return nil, err
			}
			litLen += n
			srcPos = np
		}

		if srcPos+litLen > len(src) {
			return nil, fmt.Errorf("%w: literal run overruns source", ErrMalformedBlock)
		}
		var err error
		dst, err = growFor(dst, litLen, maxSize)
		if err != nil {
			return nil, err
		}
		dst = append(dst, src[srcPos:srcPos+litLen]...)
		srcPos += litLen

		if srcPos >= len(src) {
			break
		}

		if srcPos+2 > len(src) {
			return nil, fmt.Errorf("%w: truncated offset", ErrMalformedBlock)
		}
		offset := int(src[srcPos]) | int(src[srcPos+1])<<8
		srcPos += 2
		if offset == 0 {
			return nil, fmt.Errorf("%w: zero offset", ErrMalformedBlock)
		}

		matchLen := int(token & 0x0F)
		if matchLen == 15 {
			n, np, err := readRunLength(src, srcPos)
			if err != nil {
				return nil, err
			}
			matchLen += n
			srcPos = np
		}
		matchLen += MinMatchSize

		if offset > len(dst) {
			return nil, fmt.Errorf("%w: offset %d exceeds output position %d", ErrMalformedBlock, offset, len(dst))
		}
		dst, err = growFor(dst, matchLen, maxSize)
		if err != nil {
			return nil, err
		}
		dst = copyMatch(dst, offset, matchLen)
	}

	return dst[dictLen:], nil
}

func readRunLength(src []byte, pos int) (n, next int, err error) {
	for pos < len(src) {
		b := src[pos]
		pos++
		n += int(b)
		if b != 255 {
			return n, pos, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: truncated run length", ErrMalformedBlock)
}

func growFor(dst []byte, extra, maxSize int) ([]byte, error) {
	need := len(dst) + extra
	if need > maxSize {
		return nil, ErrShortDst
	}
	if need <= cap(dst) {
		return dst, nil
	}
	newCap := cap(dst) * 2
	if newCap < need {
		newCap = need
	}
	if newCap > maxSize {
		newCap = maxSize
	}
	grown := make([]byte, len(dst), newCap)
	copy(grown, dst)
	return grown, nil
}

// copyMatch appends matchLen bytes copied from offset bytes back in dst,
// using a wildcopy-style 16-byte overcopy fast path whenever the referent
// is at least a full chunk away (offset >= wildcopy.Stride): each 16-byte
// chunk then reads only already-committed bytes, even when later chunks
// read back into the match region itself. Matches with a smaller offset
// (spec §4.5's self-overlapping "offset < length" case, e.g. run-length
// encoding via offset 1) fall through to the byte-at-a-time loop, since a
// 16-byte chunk copy there would read bytes the match hasn't written yet.
func copyMatch(dst []byte, offset, matchLen int) []byte {
	origLen := len(dst)
	start := origLen - offset
	end := origLen + matchLen
	dst = dst[:end]

	di, si := origLen, start
	if offset >= wildcopy.Stride && end+wildcopy.Stride <= cap(dst) {
		limit := end - wildcopy.Stride
		for di <= limit {
			wildcopy.Copy16(dst[di:di+wildcopy.Stride], dst[si:si+wildcopy.Stride])
			di += wildcopy.Stride
			si += wildcopy.Stride
		}
	}

	for ; di < end; di++ {
		dst[di] = dst[si]
		si++
	}
	return dst
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
