// Package frame implements the LZ4 frame container: header, per-block
// size-prefixed payloads, and footer — spec §4.6. Grounded on the
// teacher's compress.Reader/Writer (compress/stream.go) for the overall
// shape (frameHeader struct, readFrameHeader/writeFrameHeader, the
// block-size-with-high-bit-flag convention), generalized to:
//   - compute a real header checksum via internal/xxhash32 instead of
//     hardcoding a fixed byte, and accept any blockMaxCode in {4..7} on
//     decode rather than only 4 (spec §9's documented Open Question,
//     resolved in DESIGN.md);
//   - carry a sliding dependent-block window (two block-max buffers, the
//     prior block memcpy'd to the low half, per spec §9's design note)
//     instead of the teacher's always-independent blocks;
//   - support raw-block mode (spec §4.6's "skip the frame header...");
//   - support a dictionary prefix (spec §4.6's "Dictionary").
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/harriteja/lz4opt/block"
	"github.com/harriteja/lz4opt/internal/xxhash32"
	"github.com/harriteja/lz4opt/matchfinder"
)

const (
	// Magic is the 4-byte LZ4 frame magic number, spec §3.
	Magic = 0x184D2204

	flagVersionShift      = 6
	flagBlockIndependence = 0x20
	flagContentChecksum   = 0x04

	headerSize      = 7
	blockHeaderSize = 4
	footerSize      = 4
	rawFooterSize   = 2

	uncompressedBit = 0x80000000
)

// BlockMaxCode selects the frame's declared maximum block size, spec
// §3's "blockMaxCode ∈ {4,5,6,7}".
type BlockMaxCode uint8

const (
	BlockMax64KiB  BlockMaxCode = 4
	BlockMax256KiB BlockMaxCode = 5
	BlockMax1MiB   BlockMaxCode = 6
	BlockMax4MiB   BlockMaxCode = 7
)

// Size returns the byte size a BlockMaxCode denotes.
func (c BlockMaxCode) Size() (int, error) {
	switch c {
	case BlockMax64KiB:
		return 64 * 1024, nil
	case BlockMax256KiB:
		return 256 * 1024, nil
	case BlockMax1MiB:
		return 1024 * 1024, nil
	case BlockMax4MiB:
		return 4 * 1024 * 1024, nil
	default:
		return 0, fmt.Errorf("%w: block-max code %d", ErrFormat, c)
	}
}

// Mode selects whether successive blocks may reference the previous
// block's tail (Dependent) or are parsed in isolation (Independent),
// spec §3/§4.6.
type Mode int

const (
	Dependent Mode = iota
	Independent
)

var (
	// ErrFormat is returned on decode when the magic number or
	// descriptor bytes do not match a recognized frame.
	ErrFormat = errors.New("frame: invalid or unrecognized frame format")
	// ErrChecksum is returned when the header checksum byte, or the
	// optional content checksum, does not match the computed xxHash32
	// value.
	ErrChecksum = errors.New("frame: header checksum mismatch")
	// ErrRawTooLarge is returned when raw-block mode input exceeds
	// 65535 bytes, spec §3's raw-block invariant.
	ErrRawTooLarge = errors.New("frame: raw-block input exceeds 65535 bytes")
	// ErrRawIncompressible is returned when raw-block mode is asked to
	// emit an incompressible block, spec §4.4's "in raw-block mode,
	// this is a fatal error".
	ErrRawIncompressible = errors.New("frame: raw-block mode refuses incompressible input")
)

// Options controls frame-level compression, spec §4.6/§7.
type Options struct {
	BlockMax        BlockMaxCode
	Mode            Mode
	Dict            []byte
	ContentChecksum bool
	Raw             bool
	MatchConfig     matchfinder.Config
	// OnBlock, if set, is invoked after each block is written with the
	// cumulative (original, compressed) byte counts, spec §4.7's
	// progress callback.
	OnBlock func(origTotal, compTotal int64)
}

// encodeHeader builds the 7-byte LZ4 frame header (spec §3). The optional
// content-size/dictionary-ID fields are never emitted (spec's DATA MODEL
// only requires header checksum, block-max, and flags).
func encodeHeader(blockMax BlockMaxCode, mode Mode, contentChecksum bool) [headerSize]byte {
	var h [headerSize]byte
	binary.LittleEndian.PutUint32(h[0:4], Magic)

	flg := byte(1 << flagVersionShift)
	if mode == Independent {
		flg |= flagBlockIndependence
	}
	if contentChecksum {
		flg |= flagContentChecksum
	}
	h[4] = flg
	h[5] = byte(blockMax) << 4
	h[6] = headerChecksum(flg, h[5])
	return h
}

// headerChecksum is bits 8..15 of xxHash32(seed=0) over the FLG and BD
// bytes, i.e. (sum >> 8) & 0xFF, the LZ4 frame format's HC byte.
func headerChecksum(flg, bd byte) byte {
	sum := xxhash32.Checksum(0, []byte{flg, bd})
	return byte(sum >> 8)
}

// Compress reads all of r, parses it into blocks of opts.BlockMax size,
// and writes the framed (or raw, per opts.Raw) LZ4 stream to w. It
// returns the total original and compressed byte counts, plus the total
// number of parser tokens (literal-run/match commands) emitted across
// every block, for callers that report it (spec §6's verbose
// token-count summary).
func Compress(w io.Writer, r io.Reader, opts Options) (origTotal, compTotal int64, tokens int, err error) {
	if opts.BlockMax == 0 {
		opts.BlockMax = BlockMax4MiB
	}
	blockSize, err := opts.BlockMax.Size()
	if err != nil {
		return 0, 0, 0, err
	}

	if opts.Raw {
		return compressRaw(w, r, opts, blockSize)
	}

	header := encodeHeader(opts.BlockMax, opts.Mode, opts.ContentChecksum)
	n, err := w.Write(header[:])
	compTotal += int64(n)
	if err != nil {
		return origTotal, compTotal, tokens, err
	}

	var contentHash *xxhash32.Digest
	if opts.ContentChecksum {
		contentHash = xxhash32.New(0)
	}

	window := make([]byte, 0, 2*blockSize)
	window = append(window, opts.Dict...)
	prevTailLen := len(opts.Dict)

	buf := make([]byte, blockSize)
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			chunk := buf[:n]
			origTotal += int64(n)
			if contentHash != nil {
				contentHash.Write(chunk)
			}

			var dict []byte
			if opts.Mode == Dependent && prevTailLen > 0 {
				dict = window[len(window)-prevTailLen:]
			}
			compressed, blockTokens, cerr := block.Encode(nil, chunk, block.Options{Dict: dict, MatchConfig: opts.MatchConfig})
			if cerr != nil {
				return origTotal, compTotal, tokens, cerr
			}
			tokens += blockTokens

			written, werr := writeBlock(w, chunk, compressed)
			compTotal += int64(written)
			if werr != nil {
				return origTotal, compTotal, tokens, werr
			}
			if opts.OnBlock != nil {
				opts.OnBlock(origTotal, compTotal)
			}

			if opts.Mode == Dependent {
				window = append(window[:0], chunk...)
				prevTailLen = len(chunk)
				if prevTailLen > 64*1024 {
					window = window[len(window)-64*1024:]
					prevTailLen = 64 * 1024
				}
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return origTotal, compTotal, tokens, readErr
		}
	}

	footer := make([]byte, footerSize)
	fn, err := w.Write(footer)
	compTotal += int64(fn)
	if err != nil {
		return origTotal, compTotal, tokens, err
	}

	if contentHash != nil {
		var sumBytes [4]byte
		binary.LittleEndian.PutUint32(sumBytes[:], contentHash.Sum32())
		cn, err := w.Write(sumBytes[:])
		compTotal += int64(cn)
		if err != nil {
			return origTotal, compTotal, tokens, err
		}
	}

	return origTotal, compTotal, tokens, nil
}

func writeBlock(w io.Writer, chunk, compressed []byte) (int, error) {
	size := uint32(len(compressed))
	useRaw := len(compressed) >= len(chunk)
	if useRaw {
		size = uint32(len(chunk)) | uncompressedBit
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:], size)
	total := 0
	n, err := w.Write(hdr[:])
	total += n
	if err != nil {
		return total, err
	}

	payload := compressed
	if useRaw {
		payload = chunk
	}
	n, err = w.Write(payload)
	total += n
	return total, err
}

func compressRaw(w io.Writer, r io.Reader, opts Options, blockSize int) (origTotal, compTotal int64, tokens int, err error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(blockSize)+1))
	if err != nil {
		return 0, 0, 0, err
	}
	if len(data) > 65535 {
		return 0, 0, 0, ErrRawTooLarge
	}
	origTotal = int64(len(data))

	compressed, blockTokens, err := block.Encode(nil, data, block.Options{Dict: opts.Dict, MatchConfig: opts.MatchConfig})
	if err != nil {
		return origTotal, 0, 0, err
	}
	if len(compressed) >= len(data) {
		return origTotal, 0, 0, ErrRawIncompressible
	}
	tokens = blockTokens

	n, err := w.Write(compressed)
	compTotal = int64(n)
	if err != nil {
		return origTotal, compTotal, tokens, err
	}
	fn, err := w.Write(make([]byte, rawFooterSize))
	compTotal += int64(fn)
	return origTotal, compTotal, tokens, err
}

// Decompress inverts Compress: it validates the frame header (or, in raw
// mode, skips straight to the single block), reads each block, and
// writes the decompressed bytes to w.
func Decompress(w io.Writer, r io.Reader, opts Options) (origTotal, compTotal int64, err error) {
	if opts.Raw {
		return decompressRaw(w, r, opts)
	}

	var hdr [headerSize]byte
	n, err := io.ReadFull(r, hdr[:])
	compTotal += int64(n)
	if err != nil {
		return 0, compTotal, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != Magic {
		return 0, compTotal, ErrFormat
	}
	flg, bd, hc := hdr[4], hdr[5], hdr[6]
	if (flg>>flagVersionShift)&0x3 != 1 {
		return 0, compTotal, ErrFormat
	}
	if hc != headerChecksum(flg, bd) {
		return 0, compTotal, ErrChecksum
	}
	blockMax := BlockMaxCode(bd >> 4)
	if _, sizeErr := blockMax.Size(); sizeErr != nil {
		return 0, compTotal, fmt.Errorf("%w: %v", ErrFormat, sizeErr)
	}
	mode := Dependent
	if flg&flagBlockIndependence != 0 {
		mode = Independent
	}
	contentChecksum := flg&flagContentChecksum != 0

	var contentHash *xxhash32.Digest
	if contentChecksum {
		contentHash = xxhash32.New(0)
	}

	window := append([]byte(nil), opts.Dict...)
	prevTailLen := len(opts.Dict)

	for {
		var szBuf [blockHeaderSize]byte
		n, err := io.ReadFull(r, szBuf[:])
		compTotal += int64(n)
		if err != nil {
			return origTotal, compTotal, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		raw := binary.LittleEndian.Uint32(szBuf[:])
		if raw == 0 {
			break
		}
		uncompressed := raw&uncompressedBit != 0
		size := int(raw &^ uncompressedBit)

		payload := make([]byte, size)
		n, err = io.ReadFull(r, payload)
		compTotal += int64(n)
		if err != nil {
			return origTotal, compTotal, fmt.Errorf("%w: %v", ErrFormat, err)
		}

		var decoded []byte
		if uncompressed {
			decoded = payload
		} else {
			var dict []byte
			if mode == Dependent && prevTailLen > 0 {
				dict = window[len(window)-prevTailLen:]
			}
			maxSize, _ := blockMax.Size()
			decoded, err = block.Decode(nil, payload, dict, len(dict)+maxSize)
			if err != nil {
				return origTotal, compTotal, err
			}
		}

		if _, werr := w.Write(decoded); werr != nil {
			return origTotal, compTotal, werr
		}
		origTotal += int64(len(decoded))
		if contentHash != nil {
			contentHash.Write(decoded)
		}

		if mode == Dependent {
			window = append(window[:0], decoded...)
			prevTailLen = len(decoded)
			if prevTailLen > 64*1024 {
				window = window[len(window)-64*1024:]
				prevTailLen = 64 * 1024
			}
		}
	}

	if contentChecksum {
		var sumBytes [4]byte
		n, err := io.ReadFull(r, sumBytes[:])
		compTotal += int64(n)
		if err != nil {
			return origTotal, compTotal, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if contentHash != nil && binary.LittleEndian.Uint32(sumBytes[:]) != contentHash.Sum32() {
			return origTotal, compTotal, ErrChecksum
		}
	}

	return origTotal, compTotal, nil
}

func decompressRaw(w io.Writer, r io.Reader, opts Options) (origTotal, compTotal int64, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, err
	}
	if len(data) < rawFooterSize {
		return 0, int64(len(data)), fmt.Errorf("%w: raw stream too short", ErrFormat)
	}
	payload := data[:len(data)-rawFooterSize]
	compTotal = int64(len(data))

	decoded, err := block.Decode(nil, payload, opts.Dict, len(opts.Dict)+65535)
	if err != nil {
		return 0, compTotal, err
	}
	if _, werr := w.Write(decoded); werr != nil {
		return int64(len(decoded)), compTotal, werr
	}
	return int64(len(decoded)), compTotal, nil
}
