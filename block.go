package deflate

import (
	"github.com/vela-go/deflate/bitio"
	"github.com/vela-go/deflate/prefix"
)

// Block type codes, written LSB-first as the low 2 bits after BFINAL.
const (
	btStored   = 0
	btFixed    = 1
	btDynamic  = 2
	btReserved = 3
)

// blockStats tallies literal/length and distance symbol frequencies
// from a Match sequence over src, and the total extra-bit cost every
// back-reference in the sequence carries.
type blockStats struct {
	litFreq   []uint32
	distFreq  []uint32
	extraBits int
}

func tally(src []byte, matches []Match) blockStats {
	st := blockStats{
		litFreq:  make([]uint32, literalAlphaSize),
		distFreq: make([]uint32, distAlphaSize),
	}
	st.litFreq[endOfBlock] = 1

	pos := 0
	for _, m := range matches {
		for i := 0; i < m.Unmatched; i++ {
			st.litFreq[src[pos+i]]++
		}
		pos += m.Unmatched
		if m.Length > 0 {
			lsym, lextra, _ := lengthCodeFor(m.Length)
			dsym, dextra, _ := distCodeFor(m.Distance)
			st.litFreq[lsym]++
			st.distFreq[dsym]++
			st.extraBits += int(lextra) + int(dextra)
			pos += m.Length
		}
	}
	return st
}

// usedRange returns one past the highest symbol with a positive
// frequency, and never less than min, matching the HLIT/HDIST "number
// of codes present" framing: both alphabets must report at least one
// used code even if that is only the end-of-block symbol.
func usedRange(freq []uint32, min int) int {
	last := min - 1
	for i, f := range freq {
		if f > 0 && i > last {
			last = i
		}
	}
	if last < min-1 {
		last = min - 1
	}
	return last + 1
}

// writeBlock tallies src/matches, picks the cheapest of stored, fixed,
// and dynamic framing, and writes the block to w.
func writeBlock(w *bitio.Writer, src []byte, matches []Match, final bool) error {
	st := tally(src, matches)

	storedBits := 32 + len(src)*8 // LEN + NLEN + raw bytes, byte-aligned
	fixedBits, err := costFixed(st)
	if err != nil {
		return err
	}
	litLens, distLens, dynBits, err := buildDynamicTables(st)
	if err != nil {
		return err
	}

	bt := btDynamic
	bestBits := dynBits
	if fixedBits < bestBits {
		bt = btFixed
		bestBits = fixedBits
	}
	if storedBits < bestBits && len(src) < 1<<16 {
		bt = btStored
	}

	var finalBit uint32
	if final {
		finalBit = 1
	}
	w.WriteBitsLSB(finalBit, 1)
	w.WriteBitsLSB(uint32(bt), 2)

	switch bt {
	case btStored:
		w.PadToByte()
		n := uint32(len(src))
		w.WriteBitsLSB(n&0xffff, 16)
		w.WriteBitsLSB((^n)&0xffff, 16)
		w.WriteByteAligned(src)
	case btFixed:
		litCoder, _ := prefix.NewCanonicalCoder(fixedLiteralLengths())
		distCoder, _ := prefix.NewCanonicalCoder(fixedDistLengths())
		writeTokens(w, src, matches, litCoder, distCoder)
	case btDynamic:
		litCoder, err := prefix.NewCanonicalCoder(litLens)
		if err != nil {
			return err
		}
		distCoder, err := prefix.NewCanonicalCoder(distLens)
		if err != nil {
			return err
		}
		writeDynamicHeader(w, litLens, distLens)
		writeTokens(w, src, matches, litCoder, distCoder)
	}
	return nil
}

// writeTokens emits the literal/length/distance token stream for one
// block using already-built coders, terminated by the end-of-block
// symbol.
func writeTokens(w *bitio.Writer, src []byte, matches []Match, litCoder, distCoder *prefix.CanonicalCoder) {
	pos := 0
	for _, m := range matches {
		for i := 0; i < m.Unmatched; i++ {
			litCoder.Encode(w, int(src[pos+i]))
		}
		pos += m.Unmatched
		if m.Length > 0 {
			lsym, lextra, lval := lengthCodeFor(m.Length)
			dsym, dextra, dval := distCodeFor(m.Distance)
			litCoder.Encode(w, lsym)
			w.WriteBitsLSB(uint32(lval), lextra)
			distCoder.Encode(w, dsym)
			w.WriteBitsLSB(uint32(dval), dextra)
			pos += m.Length
		}
	}
	litCoder.Encode(w, endOfBlock)
}

func costFixed(st blockStats) (int, error) {
	litLens := fixedLiteralLengths()
	distLens := fixedDistLengths()
	bits := st.extraBits
	for s, f := range st.litFreq {
		bits += int(f) * int(litLens[s])
	}
	for s, f := range st.distFreq {
		bits += int(f) * int(distLens[s])
	}
	return bits, nil
}

// buildDynamicTables constructs canonical code-length assignments for
// the literal/length and distance alphabets and returns them along with
// a cost estimate that includes (conservatively) the cost of
// transmitting the tables themselves.
func buildDynamicTables(st blockStats) (litLens, distLens []uint8, bits int, err error) {
	hlitEnd := usedRange(st.litFreq, endOfBlock+1)
	hdistEnd := usedRange(st.distFreq, 1)

	litLens = make([]uint8, hlitEnd)
	distLens = make([]uint8, hdistEnd)

	litLensU32, err := prefix.PackageMergeAny(st.litFreq[:hlitEnd], maxCodeLength)
	if err != nil {
		return nil, nil, 0, err
	}
	for i, l := range litLensU32 {
		litLens[i] = uint8(l)
	}

	distLensU32, err := prefix.PackageMergeAny(st.distFreq[:hdistEnd], maxCodeLength)
	if err != nil {
		return nil, nil, 0, err
	}
	for i, l := range distLensU32 {
		distLens[i] = uint8(l)
	}

	bits = st.extraBits
	for s, l := range litLens {
		bits += int(st.litFreq[s]) * int(l)
	}
	for s, l := range distLens {
		bits += int(st.distFreq[s]) * int(l)
	}

	// Conservative (upper-bound) estimate of the header and code-length
	// table transmission cost: HLIT+HDIST+HCLEN fields, all 19
	// code-length codes at 3 bits, and one code-length symbol of at most
	// 7 bits per literal/distance code with no run-length compression
	// credited.
	bits += 5 + 5 + 4 + codeLengthAlphaSize*3 + 7*(hlitEnd+hdistEnd)

	return litLens, distLens, bits, nil
}

// writeDynamicHeader writes HLIT, HDIST, HCLEN, the code-length
// alphabet's own lengths, and the RLE-encoded literal/distance length
// sequences, per RFC 1951 §3.2.7.
func writeDynamicHeader(w *bitio.Writer, litLens, distLens []uint8) {
	w.WriteBitsLSB(uint32(len(litLens)-257), 5)
	w.WriteBitsLSB(uint32(len(distLens)-1), 5)

	codegenSyms, codegenExtra := generateCodegen(litLens, distLens)

	clFreq := make([]uint32, codeLengthAlphaSize)
	for _, s := range codegenSyms {
		clFreq[s]++
	}
	clLensU32, err := prefix.PackageMergeAny(clFreq, 7)
	if err != nil {
		// The code-length alphabet has only 19 symbols; 7 bits is
		// always enough headroom (2^7 >> 19), so this cannot happen
		// for a well-formed tally.
		panic(err)
	}
	clLens := make([]uint8, codeLengthAlphaSize)
	for i, l := range clLensU32 {
		clLens[i] = uint8(l)
	}

	hclen := codeLengthAlphaSize
	for hclen > 4 && clLens[codegenOrder[hclen-1]] == 0 {
		hclen--
	}
	w.WriteBitsLSB(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		w.WriteBitsLSB(uint32(clLens[codegenOrder[i]]), 3)
	}

	clCoder, err := prefix.NewCanonicalCoder(clLens)
	if err != nil {
		panic(err)
	}
	for i, sym := range codegenSyms {
		clCoder.Encode(w, sym)
		switch sym {
		case 16:
			w.WriteBitsLSB(uint32(codegenExtra[i]), 2)
		case 17:
			w.WriteBitsLSB(uint32(codegenExtra[i]), 3)
		case 18:
			w.WriteBitsLSB(uint32(codegenExtra[i]), 7)
		}
	}
}

// generateCodegen run-length encodes the concatenation of litLens and
// distLens into the code-length alphabet: 0-15 are literal lengths,
// 16 repeats the previous length 3-6 times, 17 repeats a zero length
// 3-10 times, 18 repeats a zero length 11-138 times.
func generateCodegen(litLens, distLens []uint8) (syms []int, extra []int) {
	all := make([]uint8, 0, len(litLens)+len(distLens))
	all = append(all, litLens...)
	all = append(all, distLens...)

	i := 0
	for i < len(all) {
		l := all[i]
		runLen := 1
		for i+runLen < len(all) && all[i+runLen] == l {
			runLen++
		}
		i += runLen

		if l == 0 {
			for runLen > 0 {
				switch {
				case runLen < 3:
					syms = append(syms, 0)
					extra = append(extra, 0)
					runLen--
				case runLen <= 10:
					syms = append(syms, 17)
					extra = append(extra, runLen-3)
					runLen = 0
				default:
					n := runLen
					if n > 138 {
						n = 138
					}
					syms = append(syms, 18)
					extra = append(extra, n-11)
					runLen -= n
				}
			}
		} else {
			syms = append(syms, int(l))
			extra = append(extra, 0)
			runLen--
			for runLen > 0 {
				if runLen < 3 {
					syms = append(syms, int(l))
					extra = append(extra, 0)
					runLen--
					continue
				}
				n := runLen
				if n > 6 {
					n = 6
				}
				syms = append(syms, 16)
				extra = append(extra, n-3)
				runLen -= n
			}
		}
	}
	return syms, extra
}
