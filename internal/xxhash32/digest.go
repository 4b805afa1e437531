package xxhash32

import "encoding/binary"

// Digest accumulates bytes across multiple Write calls and produces a
// single xxHash32 checksum, used for the frame layer's optional content
// checksum which spans every block of a stream. It keeps only the four
// running accumulators, the total length, and a small pending buffer
// (< 16 bytes) rather than retaining the whole input, so checksumming a
// multi-gigabyte stream costs O(1) memory.
type Digest struct {
	seed uint32
	v1   uint32
	v2   uint32
	v3   uint32
	v4   uint32
	n    uint64 // total bytes written
	buf  [16]byte
	bLen int // bytes pending in buf
}

// New returns a Digest seeded with seed (0 for the LZ4 frame content
// checksum).
func New(seed uint32) *Digest {
	d := &Digest{seed: seed}
	d.Reset()
	return d
}

// Reset clears the digest back to its initial state.
func (d *Digest) Reset() {
	d.v1 = d.seed + prime1 + prime2
	d.v2 = d.seed + prime2
	d.v3 = d.seed
	d.v4 = d.seed - prime1
	d.n = 0
	d.bLen = 0
}

// Write folds p into the running accumulators, 16 bytes at a time.
func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	d.n += uint64(n)

	if d.bLen > 0 {
		fill := 16 - d.bLen
		if fill > len(p) {
			fill = len(p)
		}
		copy(d.buf[d.bLen:], p[:fill])
		d.bLen += fill
		p = p[fill:]
		if d.bLen < 16 {
			return n, nil
		}
		d.consume(d.buf[:])
		d.bLen = 0
	}

	for len(p) >= 16 {
		d.consume(p[:16])
		p = p[16:]
	}

	if len(p) > 0 {
		d.bLen = copy(d.buf[:], p)
	}

	return n, nil
}

func (d *Digest) consume(chunk []byte) {
	d.v1 = round(d.v1, binary.LittleEndian.Uint32(chunk[0:4]))
	d.v2 = round(d.v2, binary.LittleEndian.Uint32(chunk[4:8]))
	d.v3 = round(d.v3, binary.LittleEndian.Uint32(chunk[8:12]))
	d.v4 = round(d.v4, binary.LittleEndian.Uint32(chunk[12:16]))
}

// Sum32 returns the xxHash32 checksum of everything written so far.
func (d *Digest) Sum32() uint32 {
	var h uint32
	if d.n >= 16 {
		h = rotl32(d.v1, 1) + rotl32(d.v2, 7) + rotl32(d.v3, 12) + rotl32(d.v4, 18)
	} else {
		h = d.seed + prime5
	}
	h += uint32(d.n)

	rest := d.buf[:d.bLen]
	for len(rest) >= 4 {
		h += binary.LittleEndian.Uint32(rest[0:4]) * prime3
		h = rotl32(h, 17) * prime4
		rest = rest[4:]
	}
	for len(rest) > 0 {
		h += uint32(rest[0]) * prime5
		h = rotl32(h, 11) * prime1
		rest = rest[1:]
	}

	h ^= h >> 15
	h *= prime2
	h ^= h >> 13
	h *= prime3
	h ^= h >> 16

	return h
}
