package deflate

import (
	"errors"
	"io"

	"github.com/vela-go/deflate/bitio"
	"github.com/vela-go/deflate/matchfinder"
)

// blockSize is the chunk size input is split into before each chunk is
// handed to the MatchFinder and written as its own block, mirroring
// github.com/andybalholm/pack's flate.Writer.
const blockSize = 1 << 16

// A Writer compresses data written to it and writes the compressed form
// to an underlying io.Writer, using RFC 1951-shaped framing.
//
// The entire stream is buffered in memory and only emitted on Close;
// this package targets whole-message compression, not unbounded
// streaming, so there is no benefit to flushing blocks early.
type Writer struct {
	dest io.Writer
	mf   MatchFinder
	buf  []byte
	err  error
	done bool
}

// NewWriter returns a Writer that compresses data at the given level.
// Level 0 disables match finding entirely: every block carries only
// literals and, as at any other level, is written with whichever of
// stored, fixed or dynamic framing is estimated smallest, so level 0
// output is not limited to stored blocks. Levels below 0 or above 9 are
// clamped into range.
func NewWriter(dest io.Writer, level int) *Writer {
	if level < 0 {
		level = 0
	}
	if level > 9 {
		level = 9
	}
	w := &Writer{dest: dest}
	if level > 0 {
		w.mf = matchfinder.New(level)
	}
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.done {
		return 0, errors.New("deflate: write after close")
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Close flushes the buffered input as a sequence of blocks and writes
// them to the destination. It must be called exactly once; Write after
// Close returns an error.
func (w *Writer) Close() error {
	if w.done {
		return w.err
	}
	w.done = true
	if w.err == nil {
		w.err = w.flush()
	}
	return w.err
}

func (w *Writer) flush() error {
	bw := bitio.NewWriter(nil)

	if len(w.buf) == 0 {
		if err := writeBlock(bw, nil, nil, true); err != nil {
			return err
		}
	} else {
		for off := 0; off < len(w.buf); off += blockSize {
			end := off + blockSize
			if end > len(w.buf) {
				end = len(w.buf)
			}
			chunk := w.buf[off:end]
			final := end == len(w.buf)
			if err := writeBlock(bw, chunk, w.findMatches(chunk), final); err != nil {
				return err
			}
		}
	}

	bw.PadToByte()
	_, err := w.dest.Write(bw.Bytes())
	return err
}

// findMatches runs the MatchFinder over chunk. Each chunk is encoded as
// its own independent block starting at relative position 0, so the
// finder's dictionary must not carry position state across chunks: a
// stale HashChainFinder.base (or FastFinder.table entry) from a prior
// chunk would otherwise be read against the new chunk's indices and
// produce an out-of-window distance or an out-of-range match.
func (w *Writer) findMatches(chunk []byte) []Match {
	if w.mf == nil {
		return []Match{{Unmatched: len(chunk)}}
	}
	w.mf.Reset()
	return w.mf.FindMatches(nil, chunk)
}

// A Reader decompresses a full RFC 1951-shaped stream, previously
// written by a Writer, into memory.
type Reader struct {
	out []byte
	pos int
}

// NewReader reads and decompresses the entire contents of r.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	br := bitio.NewReader(data)

	var out []byte
	for {
		var final bool
		out, final, err = readBlock(br, out)
		if err != nil {
			return nil, err
		}
		if final {
			break
		}
	}
	return &Reader{out: out}, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= len(r.out) {
		return 0, io.EOF
	}
	n := copy(p, r.out[r.pos:])
	r.pos += n
	return n, nil
}
