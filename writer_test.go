package deflate

import (
	"bytes"
	"compress/flate"
	"io"
	"math/rand"
	"testing"

	klauspostflate "github.com/klauspost/compress/flate"
)

func mustReadAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestWriterRoundTripSelf(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("hello, hello, hello, hello, world"),
		bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 3000),
		randomBytes(70000, 1),
	}
	for level := 0; level <= 9; level++ {
		for i, in := range inputs {
			var buf bytes.Buffer
			w := NewWriter(&buf, level)
			if _, err := w.Write(in); err != nil {
				t.Fatalf("level %d case %d: write: %v", level, i, err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("level %d case %d: close: %v", level, i, err)
			}

			r, err := NewReader(&buf)
			if err != nil {
				t.Fatalf("level %d case %d: new reader: %v", level, i, err)
			}
			got := mustReadAll(t, r)
			if !bytes.Equal(got, in) {
				t.Fatalf("level %d case %d: round trip mismatch (got %d bytes, want %d)", level, i, len(got), len(in))
			}
		}
	}
}

// TestWriterDecodesWithStdlibFlate cross-checks the encoder against the
// standard library's decoder: any well-formed deflate stream this
// package writes must also be a well-formed deflate stream to compress/flate.
func TestWriterDecodesWithStdlibFlate(t *testing.T) {
	text := bytes.Repeat([]byte("Opticks, or a treatise of the reflections, refractions, "), 500)
	for level := 1; level <= 9; level++ {
		var buf bytes.Buffer
		w := NewWriter(&buf, level)
		w.Write(text)
		if err := w.Close(); err != nil {
			t.Fatalf("level %d: close: %v", level, err)
		}

		sr := flate.NewReader(bytes.NewReader(buf.Bytes()))
		got, err := io.ReadAll(sr)
		if err != nil {
			t.Fatalf("level %d: compress/flate failed to decode our stream: %v", level, err)
		}
		if !bytes.Equal(got, text) {
			t.Fatalf("level %d: compress/flate decoded mismatched data", level)
		}
	}
}

// TestWriterDecodesWithKlauspostFlate repeats the same cross-check
// against a second, independent decoder implementation.
func TestWriterDecodesWithKlauspostFlate(t *testing.T) {
	text := bytes.Repeat([]byte("a quick brown fox jumps over a lazy dog "), 800)
	var buf bytes.Buffer
	w := NewWriter(&buf, 6)
	w.Write(text)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	sr := klauspostflate.NewReader(bytes.NewReader(buf.Bytes()))
	got, err := io.ReadAll(sr)
	if err != nil {
		t.Fatalf("klauspost/compress/flate failed to decode our stream: %v", err)
	}
	if !bytes.Equal(got, text) {
		t.Fatal("klauspost/compress/flate decoded mismatched data")
	}
}

func TestReaderDecodesStdlibFlateOutput(t *testing.T) {
	text := bytes.Repeat([]byte("round trip the other direction too "), 1000)
	var buf bytes.Buffer
	sw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatal(err)
	}
	sw.Write(text)
	sw.Close()

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("our reader failed on compress/flate's stream: %v", err)
	}
	got := mustReadAll(t, r)
	if !bytes.Equal(got, text) {
		t.Fatal("decoded mismatched data from a stdlib-written stream")
	}
}

func TestWriterMultipleBlocks(t *testing.T) {
	in := bytes.Repeat([]byte("0123456789"), blockSize/5) // spans two blockSize chunks
	var buf bytes.Buffer
	w := NewWriter(&buf, 6)
	w.Write(in)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got := mustReadAll(t, r)
	if !bytes.Equal(got, in) {
		t.Fatal("multi-block round trip mismatch")
	}
}

func TestReaderRejectsInvalidBlockType(t *testing.T) {
	// A single byte with BFINAL=1, BTYPE=11 (reserved).
	data := []byte{0b111}
	_, err := NewReader(bytes.NewReader(data))
	if err != ErrInvalidBlockType {
		t.Fatalf("got %v, want ErrInvalidBlockType", err)
	}
}

func TestReaderRejectsTruncatedStream(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil))
	if err != ErrTruncatedStream {
		t.Fatalf("got %v, want ErrTruncatedStream", err)
	}
}

func randomBytes(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	rng.Read(b)
	return b
}
