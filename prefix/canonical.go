package prefix

import (
	"errors"
	"sort"

	"github.com/vela-go/deflate/bitio"
)

// ErrMalformedCodeLengths is returned when a length assignment does not
// satisfy the Kraft equality and therefore cannot describe a complete
// prefix code.
var ErrMalformedCodeLengths = errors.New("prefix: code lengths violate Kraft equality")

// CanonicalCoder assigns and uses RFC 1951 §3.2.2 canonical codewords
// for a per-symbol code-length assignment: codes of the same length are
// assigned consecutively in ascending symbol order, and shorter codes
// numerically precede longer ones once left-shifted to a common length.
//
// Codewords are written most-significant-bit first; this is the
// opposite convention from the extra bits and byte-packing BlockWriter
// uses alongside a CanonicalCoder, and the two must never be conflated.
type CanonicalCoder struct {
	lengths []uint8
	codes   []uint16
	maxLen  uint8

	// decode side: symbols ordered by (length, symbol) ascending, which
	// is exactly the order codewords increase in within the canonical
	// assignment.
	firstCode  []uint16 // indexed by length
	firstIndex []int    // indexed by length, into symOrder
	countAtLen []int    // indexed by length
	symOrder   []int
}

// NewCanonicalCoder builds a coder from a per-symbol length assignment.
// lengths[s] == 0 means symbol s is absent from the alphabet and must
// never be encoded or appear in a decoded stream.
func NewCanonicalCoder(lengths []uint8) (*CanonicalCoder, error) {
	c := &CanonicalCoder{lengths: append([]uint8(nil), lengths...)}

	var maxLen uint8
	used := 0
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
		if l > 0 {
			used++
		}
	}
	c.maxLen = maxLen

	if used > 1 {
		var sum uint64
		for _, l := range lengths {
			if l > 0 {
				sum += uint64(1) << (maxLen - l)
			}
		}
		if sum != uint64(1)<<maxLen {
			return nil, ErrMalformedCodeLengths
		}
	}

	blCount := make([]int, maxLen+1)
	for _, l := range lengths {
		if l > 0 {
			blCount[l]++
		}
	}

	nextCode := make([]uint16, maxLen+1)
	var code uint16
	for bits := uint8(1); bits <= maxLen; bits++ {
		code = (code + uint16(blCount[bits-1])) << 1
		nextCode[bits] = code
	}

	c.codes = make([]uint16, len(lengths))
	assign := append([]uint16(nil), nextCode...)
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		c.codes[sym] = assign[l]
		assign[l]++
	}

	c.buildDecodeTable(blCount)
	return c, nil
}

func (c *CanonicalCoder) buildDecodeTable(blCount []int) {
	order := make([]int, 0, len(c.lengths))
	for sym, l := range c.lengths {
		if l > 0 {
			order = append(order, sym)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		li, lj := c.lengths[order[i]], c.lengths[order[j]]
		if li != lj {
			return li < lj
		}
		return order[i] < order[j]
	})
	c.symOrder = order

	n := int(c.maxLen) + 1
	c.firstCode = make([]uint16, n)
	c.firstIndex = make([]int, n)
	c.countAtLen = make([]int, n)

	var code uint16
	idx := 0
	for l := 1; l < n; l++ {
		c.firstCode[l] = code
		c.firstIndex[l] = idx
		c.countAtLen[l] = blCount[l]
		code = (code + uint16(blCount[l])) << 1
		idx += blCount[l]
	}
}

// Length reports the codeword length for symbol s, 0 if s is absent.
func (c *CanonicalCoder) Length(s int) uint8 { return c.lengths[s] }

// Encode writes symbol s's codeword to w, most-significant-bit first.
// Encoding a symbol with length 0 is a programming error (lengths of 0
// mean "absent from this block") and panics, matching the encode-path
// invariant checking called for in the error handling design.
func (c *CanonicalCoder) Encode(w *bitio.Writer, s int) {
	l := c.lengths[s]
	if l == 0 {
		panic("prefix: encoding a symbol with code length 0")
	}
	w.WriteBitsMSB(uint32(c.codes[s]), uint(l))
}

// Decode reads one codeword from r and returns the symbol it represents.
// It walks bit-by-bit through the cumulative next_code ranges, matching
// the reference (not lookup-table-accelerated) decoding strategy.
func (c *CanonicalCoder) Decode(r *bitio.Reader) (int, error) {
	var code uint16
	for l := 1; l <= int(c.maxLen); l++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		code = (code << 1) | uint16(bit)
		if c.countAtLen[l] > 0 {
			offset := int(code - c.firstCode[l])
			if offset >= 0 && offset < c.countAtLen[l] {
				return c.symOrder[c.firstIndex[l]+offset], nil
			}
		}
	}
	return 0, ErrMalformedCodeLengths
}
