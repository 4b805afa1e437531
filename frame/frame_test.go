package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/harriteja/lz4opt/matchfinder"
)

func defaultOpts() Options {
	return Options{BlockMax: BlockMax4MiB, Mode: Dependent, MatchConfig: matchfinder.DefaultConfig()}
}

// TestEmptyFrameBytes pins the empty-frame boundary scenario: empty input
// produces exactly the 11-byte header+footer sequence, for both the
// BlockMax64KiB descriptor spec §8's worked example uses (header checksum
// byte 0xC0) and this implementation's BlockMax4MiB default (header
// checksum byte 0xDF — see DESIGN.md's header-checksum Open Question
// resolution for why the two descriptors produce different real
// xxHash32-derived checksum bytes).
func TestEmptyFrameBytes(t *testing.T) {
	tests := []struct {
		name      string
		blockMax  BlockMaxCode
		wantBytes []byte
	}{
		{"block-max-64KiB", BlockMax64KiB, []byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x40, 0xC0, 0x00, 0x00, 0x00, 0x00}},
		{"block-max-4MiB default", BlockMax4MiB, []byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x70, 0xDF, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOpts()
			opts.BlockMax = tt.blockMax

			var out bytes.Buffer
			if _, _, _, err := Compress(&out, bytes.NewReader(nil), opts); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if !bytes.Equal(out.Bytes(), tt.wantBytes) {
				t.Errorf("empty-frame bytes = % x, want % x", out.Bytes(), tt.wantBytes)
			}
		})
	}
}

func TestEmptyFrameRoundTrips(t *testing.T) {
	var compressed bytes.Buffer
	if _, _, _, err := Compress(&compressed, bytes.NewReader(nil), defaultOpts()); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	var decompressed bytes.Buffer
	if _, _, err := Decompress(&decompressed, bytes.NewReader(compressed.Bytes()), defaultOpts()); err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if decompressed.Len() != 0 {
		t.Errorf("decompressed empty input = %d bytes, want 0", decompressed.Len())
	}
}

func TestRoundTripVariousSizesAndModes(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	random2048 := make([]byte, 2048)
	r.Read(random2048)

	tests := []struct {
		name string
		data []byte
		mode Mode
	}{
		{"small dependent", []byte("hello, hello, hello!"), Dependent},
		{"small independent", []byte("hello, hello, hello!"), Independent},
		{"random 2048 dependent", random2048, Dependent},
		{"repeating pattern 1MiB dependent", bytes.Repeat([]byte("0123456789ABCDEF"), 1<<16), Dependent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOpts()
			opts.Mode = tt.mode
			opts.BlockMax = BlockMax64KiB

			var compressed bytes.Buffer
			if _, _, _, err := Compress(&compressed, bytes.NewReader(tt.data), opts); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			var decompressed bytes.Buffer
			if _, _, err := Decompress(&decompressed, bytes.NewReader(compressed.Bytes()), opts); err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			if !bytes.Equal(decompressed.Bytes(), tt.data) {
				t.Errorf("round trip mismatch for %s", tt.name)
			}
		})
	}
}

func TestRawModeSizeLimits(t *testing.T) {
	opts := defaultOpts()
	opts.Raw = true

	t.Run("65535 bytes compressible succeeds", func(t *testing.T) {
		data := bytes.Repeat([]byte{0}, 65535)
		var compressed bytes.Buffer
		if _, _, _, err := Compress(&compressed, bytes.NewReader(data), opts); err != nil {
			t.Fatalf("Compress() error = %v", err)
		}
		if compressed.Len() < rawFooterSize {
			t.Fatalf("compressed output too short: %d bytes", compressed.Len())
		}
		footer := compressed.Bytes()[compressed.Len()-rawFooterSize:]
		if footer[0] != 0 || footer[1] != 0 {
			t.Errorf("raw footer = % x, want 00 00", footer)
		}

		var decompressed bytes.Buffer
		if _, _, err := Decompress(&decompressed, bytes.NewReader(compressed.Bytes()), opts); err != nil {
			t.Fatalf("Decompress() error = %v", err)
		}
		if !bytes.Equal(decompressed.Bytes(), data) {
			t.Error("raw round trip mismatch")
		}
	})

	t.Run("65536 bytes rejected", func(t *testing.T) {
		data := bytes.Repeat([]byte{0}, 65536)
		var compressed bytes.Buffer
		_, _, _, err := Compress(&compressed, bytes.NewReader(data), opts)
		if err != ErrRawTooLarge {
			t.Errorf("Compress() error = %v, want ErrRawTooLarge", err)
		}
	})

	t.Run("incompressible input rejected", func(t *testing.T) {
		r := rand.New(rand.NewSource(7))
		data := make([]byte, 100)
		r.Read(data)
		var compressed bytes.Buffer
		_, _, _, err := Compress(&compressed, bytes.NewReader(data), opts)
		if err != ErrRawIncompressible {
			t.Errorf("Compress() error = %v, want ErrRawIncompressible", err)
		}
	})
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	bad := []byte{0, 1, 2, 3, 0x40, 0x70, 0xC0, 0, 0, 0, 0}
	var out bytes.Buffer
	_, _, err := Decompress(&out, bytes.NewReader(bad), defaultOpts())
	if err != ErrFormat {
		t.Errorf("Decompress() error = %v, want ErrFormat", err)
	}
}

func TestDecompressRejectsBadChecksum(t *testing.T) {
	bad := []byte{0x04, 0x22, 0x4D, 0x18, 0x40, 0x70, 0x00, 0, 0, 0, 0}
	var out bytes.Buffer
	_, _, err := Decompress(&out, bytes.NewReader(bad), defaultOpts())
	if err != ErrChecksum {
		t.Errorf("Decompress() error = %v, want ErrChecksum", err)
	}
}

func TestDependentModeDictionaryPrefix(t *testing.T) {
	dict := []byte("ABCDEFGH")
	data := []byte("ABCDEFGH")
	opts := defaultOpts()
	opts.Dict = dict
	opts.BlockMax = BlockMax64KiB

	var compressed bytes.Buffer
	if _, _, _, err := Compress(&compressed, bytes.NewReader(data), opts); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	var decompressed bytes.Buffer
	if _, _, err := Decompress(&decompressed, bytes.NewReader(compressed.Bytes()), opts); err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(decompressed.Bytes(), data) {
		t.Errorf("dictionary round trip mismatch: got %q, want %q", decompressed.Bytes(), data)
	}
}
