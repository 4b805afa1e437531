package lz4opt

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/harriteja/lz4opt/frame"
	"github.com/harriteja/lz4opt/matchfinder"
)

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

func defaultOpts() Options {
	return Options{BlockMax: frame.BlockMax64KiB, Mode: frame.Dependent, MatchConfig: matchfinder.DefaultConfig()}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	random2048 := make([]byte, 2048)
	r.Read(random2048)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"eight as", []byte("aaaaaaaa")},
		{"random 2048", random2048},
		{"repeating", bytes.Repeat([]byte("ABCDEFGH"), 8192)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewIOStream(nopCloser{bytes.NewBuffer(tt.data)})
			var compBuf bytes.Buffer
			dst := NewIOStream(nopCloser{&compBuf})

			if _, err := Compress(dst, src, defaultOpts()); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}

			decSrc := NewIOStream(nopCloser{bytes.NewBuffer(compBuf.Bytes())})
			var decBuf bytes.Buffer
			decDst := NewIOStream(nopCloser{&decBuf})
			if _, err := Decompress(decDst, decSrc, defaultOpts()); err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}

			if !bytes.Equal(decBuf.Bytes(), tt.data) {
				t.Errorf("round trip mismatch for %s", tt.name)
			}
		})
	}
}

func TestVerifySucceedsOnValidStream(t *testing.T) {
	data := bytes.Repeat([]byte("hello world "), 100)
	src := NewIOStream(nopCloser{bytes.NewBuffer(data)})
	var compBuf bytes.Buffer
	dst := NewIOStream(nopCloser{&compBuf})
	if _, err := Compress(dst, src, defaultOpts()); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	if err := Verify(compBuf.Bytes(), data, defaultOpts()); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func TestVerifyReportsFirstMismatch(t *testing.T) {
	data := bytes.Repeat([]byte("hello world "), 100)
	src := NewIOStream(nopCloser{bytes.NewBuffer(data)})
	var compBuf bytes.Buffer
	dst := NewIOStream(nopCloser{&compBuf})
	if _, err := Compress(dst, src, defaultOpts()); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	corrupted := append([]byte(nil), data...)
	corrupted[5] = corrupted[5] ^ 0xFF

	err := Verify(compBuf.Bytes(), corrupted, defaultOpts())
	mismatch, ok := err.(*MismatchError)
	if !ok {
		t.Fatalf("Verify() error = %v (%T), want *MismatchError", err, err)
	}
	if mismatch.Offset != 5 {
		t.Errorf("MismatchError.Offset = %d, want 5", mismatch.Offset)
	}
}
