package matchfinder

import "encoding/binary"

// FastFinder is a lighter-weight single-table hash finder for the lower
// compression levels, where HashChainFinder's multi-candidate search is
// not worth its cost. It is adapted from the skip-ahead and (optional)
// one-step lazy matching approach used by Snappy-derived encoders: a
// single hash bucket per position rather than a chain, and a heuristic
// that widens the scan stride through long incompressible runs.
type FastFinder struct {
	// Lazy enables one-step lookahead: a match is only taken if the very
	// next position doesn't yield a longer one.
	Lazy bool

	table [fastTableSize]uint32
}

const (
	fastTableBits = 15
	fastTableSize = 1 << fastTableBits
	fastTableMask = fastTableSize - 1
	fastHashShift = 32 - fastTableBits
)

func NewFastFinder(lazy bool) *FastFinder {
	return &FastFinder{Lazy: lazy}
}

func (f *FastFinder) Reset() {
	f.table = [fastTableSize]uint32{}
}

func fastHash4(b []byte) uint32 {
	u := binary.LittleEndian.Uint32(b)
	return (u * 2654435761) >> fastHashShift
}

// FindMatches implements MatchFinder using a single 4-byte hash
// table and a skip-ahead heuristic for incompressible data: the scan
// stride starts at 1 and grows by one byte after roughly every further
// 32 bytes scanned without a match, reverting to a stride of 1 as soon
// as a match is found.
func (f *FastFinder) FindMatches(dst []Match, src []byte) []Match {
	n := len(src)
	if n < MinMatch+1 {
		if n > 0 {
			dst = append(dst, Match{Unmatched: n})
		}
		return dst
	}

	sLimit := n - 8
	if sLimit < 0 {
		sLimit = 0
	}
	nextEmit := 0
	s := 1

	if s > sLimit {
		return f.emitRemainder(dst, src, nextEmit)
	}

	for {
		skip := 32
		nextS := s
		var candidate int
		for {
			s = nextS
			bytesBetween := skip >> 5
			nextS = s + bytesBetween
			skip += bytesBetween
			if nextS > sLimit {
				return f.emitRemainder(dst, src, nextEmit)
			}
			h := fastHash4(src[s:]) & fastTableMask
			candidate = int(f.table[h])
			f.table[h] = uint32(s)
			if candidate > 0 && s-candidate <= WindowSize &&
				binary.LittleEndian.Uint32(src[s:]) == binary.LittleEndian.Uint32(src[candidate:]) {
				break
			}
		}

		base := s
		matchPos := candidate

		if f.Lazy && base+1 <= sLimit {
			h := fastHash4(src[base+1:]) & fastTableMask
			lazyCandidate := int(f.table[h])
			if lazyCandidate > 0 && base+1-lazyCandidate <= WindowSize &&
				binary.LittleEndian.Uint32(src[base+1:]) == binary.LittleEndian.Uint32(src[lazyCandidate:]) {
				curLen := matchLen(src[matchPos+4:], src[base+4:], MaxMatch-4)
				nextLen := matchLen(src[lazyCandidate+4:], src[base+5:], MaxMatch-4)
				if nextLen > curLen {
					f.table[h] = uint32(base + 1)
					base++
					matchPos = lazyCandidate
				}
			}
		}

		end := matchLen(src[matchPos+4:], src[base+4:], MaxMatch-4) + base + 4
		if end > n {
			end = n
		}

		for end-base > MaxMatch {
			length := MaxMatch
			dst = append(dst, Match{
				Unmatched: base - nextEmit,
				Length:    length,
				Distance:  base - matchPos,
			})
			base += length
			matchPos += length
			nextEmit = base
		}

		dst = append(dst, Match{
			Unmatched: base - nextEmit,
			Length:    end - base,
			Distance:  base - matchPos,
		})
		nextEmit = end
		s = end
		if s >= sLimit {
			return f.emitRemainder(dst, src, nextEmit)
		}

		// Update the table for a couple of positions we skipped over,
		// to improve the odds of finding the next match quickly.
		for i := s - 2; i < s; i++ {
			if i < 4 {
				continue
			}
			h := fastHash4(src[i:]) & fastTableMask
			f.table[h] = uint32(i)
		}
	}
}

func (f *FastFinder) emitRemainder(dst []Match, src []byte, nextEmit int) []Match {
	if nextEmit < len(src) {
		dst = append(dst, Match{Unmatched: len(src) - nextEmit})
	}
	return dst
}
