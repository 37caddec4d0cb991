// Package matchfinder implements the sliding-window LZ77 match finder:
// a hash-chained dictionary over a 32 KiB window that finds the longest
// back-reference at each position in amortized near-constant time.
//
// HashChainFinder is grounded in the hash-chain design of
// github.com/andybalholm/pack's flate.compressor, generalized to a
// 3-byte hash and a strict 32 KiB window with explicit re-basing.
package matchfinder

import (
	"encoding/binary"
	"hash"
	"math/bits"

	"github.com/pierrec/xxHash/xxHash32"
)

// A Match is the basic unit of LZ77 compression: some number of
// unmatched (literal) bytes followed by an optional back-reference.
// The root deflate package's Match type is an alias of this one, so a
// MatchFinder's output needs no conversion to reach the block encoder.
type Match struct {
	Unmatched int // number of literal bytes since the previous match
	Length    int // length of the matched run; 0 at the end of input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder scans src for repeated byte runs and appends the
// Matches describing them to dst.
type MatchFinder interface {
	FindMatches(dst []Match, src []byte) []Match
	Reset()
}

const (
	// LogWindowSize is log2 of the sliding window size.
	LogWindowSize = 15
	// WindowSize is the maximum back-reference distance, 32 KiB.
	WindowSize = 1 << LogWindowSize
	windowMask = WindowSize - 1

	// MinMatch is the shortest back-reference this finder ever emits.
	MinMatch = 3
	// MaxMatch is the longest back-reference this finder ever emits.
	MaxMatch = 258

	// DefaultMaxChainDepth is the number of hash-chain entries walked
	// per search when no level-specific value is configured, matching
	// the reference C implementation's match_search_depth default.
	DefaultMaxChainDepth = 64
)

// emptySlot is the hash-chain sentinel: the minimum value a signed
// 16-bit window-relative position can take, which can never collide
// with a real position (positions are always >= 0).
const emptySlot = int16(-1 << 15)

// HashChainFinder implements MatchFinder using the full
// head/prev hash-chain algorithm described for the sliding window:
// a bucket per 3-byte hash pointing at the most recent occurrence, and
// a parallel chain of prior occurrences, re-based whenever the window
// fills.
type HashChainFinder struct {
	// MaxChainDepth bounds how many candidates are examined per search.
	// Zero means DefaultMaxChainDepth.
	MaxChainDepth int

	head [WindowSize]int16
	prev [WindowSize]int16
	base int

	hasher hash.Hash32
}

// NewHashChainFinder returns a finder with the given chain-search depth
// (0 selects DefaultMaxChainDepth).
func NewHashChainFinder(maxChainDepth int) *HashChainFinder {
	f := &HashChainFinder{MaxChainDepth: maxChainDepth}
	f.Reset()
	return f
}

// Reset clears the dictionary, preparing the finder for a new stream.
func (f *HashChainFinder) Reset() {
	for i := range f.head {
		f.head[i] = emptySlot
	}
	for i := range f.prev {
		f.prev[i] = emptySlot
	}
	f.base = 0
	if f.MaxChainDepth == 0 {
		f.MaxChainDepth = DefaultMaxChainDepth
	}
	if f.hasher == nil {
		f.hasher = xxHash32.New(0)
	}
}

// FindMatches performs the full MatchFinder loop over src: at each
// position it searches for the longest valid back-reference and, when
// none of at least MinMatch length exists, records the byte as a
// literal.
func (f *HashChainFinder) FindMatches(dst []Match, src []byte) []Match {
	n := len(src)
	lookahead := 0
	nextEmit := 0

	for lookahead < n {
		maxLen := n - lookahead
		if maxLen > MaxMatch {
			maxLen = MaxMatch
		}

		var bestLen, bestOff int
		if maxLen >= MinMatch {
			bestLen, bestOff = f.longestMatch(src, lookahead, maxLen)
		}

		if bestLen < MinMatch {
			f.record(src, lookahead)
			lookahead++
			continue
		}

		dst = append(dst, Match{
			Unmatched: lookahead - nextEmit,
			Length:    bestLen,
			Distance:  bestOff,
		})
		for i := 0; i < bestLen; i++ {
			f.record(src, lookahead+i)
		}
		lookahead += bestLen
		nextEmit = lookahead
	}

	if nextEmit < n {
		dst = append(dst, Match{Unmatched: n - nextEmit})
	}
	return dst
}

// longestMatch searches the hash chain rooted at lookahead's 3-byte hash
// for the longest prefix match, walking at most f.MaxChainDepth
// candidates, each strictly within the current window.
func (f *HashChainFinder) longestMatch(src []byte, lookahead, maxLen int) (length, offset int) {
	p := lookahead - f.base
	limit := p - WindowSize

	h := f.hash3(src[lookahead:])
	candidate := f.head[h]

	bestLen := 0
	bestQ := emptySlot
	tries := 0

	for candidate != emptySlot && int(candidate) > limit && tries < f.MaxChainDepth {
		candAbs := f.base + int(candidate)
		l := matchLen(src[candAbs:], src[lookahead:], maxLen)
		if l > bestLen {
			bestLen = l
			bestQ = candidate
			if bestLen >= maxLen {
				break
			}
		}
		candidate = f.prev[candidate&windowMask]
		tries++
	}

	if bestLen < MinMatch {
		return 0, 0
	}
	bestAbs := f.base + int(bestQ)
	return bestLen, lookahead - bestAbs
}

// record inserts pos into the hash chain, re-basing the window first if
// necessary. Positions within MinMatch bytes of the end of src are
// skipped without hashing, since there is no complete 3-byte hash to
// compute there and no future search will need them.
func (f *HashChainFinder) record(src []byte, pos int) {
	if pos+MinMatch > len(src) {
		return
	}
	q := pos - f.base
	if q >= WindowSize {
		f.rebase(q)
		q = pos - f.base
	}
	h := f.hash3(src[pos:])
	f.prev[q&windowMask] = f.head[h]
	f.head[h] = int16(q)
}

// rebase slides the window forward by oldQ bytes: the base advances,
// and every stored position is re-expressed relative to the new base,
// with positions that fell out of the window becoming empty.
func (f *HashChainFinder) rebase(oldQ int) {
	f.base += oldQ
	for i := range f.head {
		f.head[i] = rebaseEntry(f.head[i], oldQ)
	}
	for i := range f.prev {
		f.prev[i] = rebaseEntry(f.prev[i], oldQ)
	}
}

func rebaseEntry(v int16, delta int) int16 {
	if v == emptySlot {
		return v
	}
	nv := int(v) - delta
	if nv < 0 {
		return emptySlot
	}
	return int16(nv)
}

// hash3 hashes the 3 bytes at the start of b into a WindowSize-bucket
// index, using xxHash32 as the underlying mixing function: a real,
// well-distributed hash primitive rather than a hand-rolled one, reused
// here as a generic hash rather than a stream checksum.
func (f *HashChainFinder) hash3(b []byte) uint32 {
	f.hasher.Reset()
	f.hasher.Write(b[:3])
	return (f.hasher.Sum32() >> (32 - LogWindowSize)) & windowMask
}

// matchLen returns the length of the common prefix of a and b, up to
// max bytes, using 8-byte word compares where possible.
func matchLen(a, b []byte, max int) int {
	if len(a) > max {
		a = a[:max]
	}
	if len(b) > max {
		b = b[:max]
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i+8 <= n {
		av := binary.LittleEndian.Uint64(a[i:])
		bv := binary.LittleEndian.Uint64(b[i:])
		if av != bv {
			return i + bits.TrailingZeros64(av^bv)>>3
		}
		i += 8
	}
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
