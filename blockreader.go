package deflate

import (
	"github.com/vela-go/deflate/bitio"
	"github.com/vela-go/deflate/prefix"
)

func wrapTruncated(err error) error {
	if err == bitio.ErrTruncated {
		return ErrTruncatedStream
	}
	return err
}

// readBlock decodes one block from r, appending decoded bytes to out,
// and reports whether it was the final block.
func readBlock(r *bitio.Reader, out []byte) (newOut []byte, final bool, err error) {
	finalBit, err := r.ReadBit()
	if err != nil {
		return out, false, wrapTruncated(err)
	}
	bt, err := r.ReadBitsLSB(2)
	if err != nil {
		return out, false, wrapTruncated(err)
	}

	switch bt {
	case btReserved:
		return out, false, ErrInvalidBlockType
	case btStored:
		r.AlignToByte()
		lenBytes, err := r.ReadBytes(2)
		if err != nil {
			return out, false, wrapTruncated(err)
		}
		nlenBytes, err := r.ReadBytes(2)
		if err != nil {
			return out, false, wrapTruncated(err)
		}
		n := int(lenBytes[0]) | int(lenBytes[1])<<8
		nlen := int(nlenBytes[0]) | int(nlenBytes[1])<<8
		if n != nlen^0xffff {
			return out, false, ErrTruncatedStream
		}
		data, err := r.ReadBytes(n)
		if err != nil {
			return out, false, wrapTruncated(err)
		}
		out = append(out, data...)
	case btFixed:
		litCoder, _ := prefix.NewCanonicalCoder(fixedLiteralLengths())
		distCoder, _ := prefix.NewCanonicalCoder(fixedDistLengths())
		out, err = decodeTokens(r, out, litCoder, distCoder)
		if err != nil {
			return out, false, err
		}
	case btDynamic:
		litCoder, distCoder, err := readDynamicHeader(r)
		if err != nil {
			return out, false, err
		}
		out, err = decodeTokens(r, out, litCoder, distCoder)
		if err != nil {
			return out, false, err
		}
	}

	return out, finalBit == 1, nil
}

// decodeTokens decodes the literal/length/distance token stream for one
// block into out, stopping at the end-of-block symbol.
func decodeTokens(r *bitio.Reader, out []byte, litCoder, distCoder *prefix.CanonicalCoder) ([]byte, error) {
	for {
		sym, err := litCoder.Decode(r)
		if err != nil {
			return out, wrapTruncated(err)
		}
		if sym == endOfBlock {
			return out, nil
		}
		if sym < endOfBlock {
			out = append(out, byte(sym))
			continue
		}

		idx := sym - lengthCodesStart
		if idx < 0 || idx >= len(lengthBase) {
			return out, ErrTruncatedStream
		}
		extra, err := r.ReadBitsLSB(lengthExtraBits[idx])
		if err != nil {
			return out, wrapTruncated(err)
		}
		length := lengthBase[idx] + int(extra)

		dsym, err := distCoder.Decode(r)
		if err != nil {
			return out, wrapTruncated(err)
		}
		if dsym < 0 || dsym >= len(distBase) {
			return out, ErrOversizeDistance
		}
		dextra, err := r.ReadBitsLSB(distExtraBits[dsym])
		if err != nil {
			return out, wrapTruncated(err)
		}
		dist := distBase[dsym] + int(dextra)

		if dist <= 0 || dist > maxWindowSize {
			return out, ErrOversizeDistance
		}
		if dist > len(out) {
			return out, ErrOversizeLength
		}

		start := len(out) - dist
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
}

// readDynamicHeader parses HLIT/HDIST/HCLEN, the code-length alphabet's
// own lengths, and the RLE-encoded literal/distance length sequences,
// returning ready-to-use canonical coders for both alphabets.
func readDynamicHeader(r *bitio.Reader) (litCoder, distCoder *prefix.CanonicalCoder, err error) {
	hlitVal, err := r.ReadBitsLSB(5)
	if err != nil {
		return nil, nil, wrapTruncated(err)
	}
	hdistVal, err := r.ReadBitsLSB(5)
	if err != nil {
		return nil, nil, wrapTruncated(err)
	}
	hclenVal, err := r.ReadBitsLSB(4)
	if err != nil {
		return nil, nil, wrapTruncated(err)
	}
	hlit := int(hlitVal) + 257
	hdist := int(hdistVal) + 1
	hclen := int(hclenVal) + 4

	clLens := make([]uint8, codeLengthAlphaSize)
	for i := 0; i < hclen; i++ {
		v, err := r.ReadBitsLSB(3)
		if err != nil {
			return nil, nil, wrapTruncated(err)
		}
		clLens[codegenOrder[i]] = uint8(v)
	}

	clCoder, err := prefix.NewCanonicalCoder(clLens)
	if err != nil {
		return nil, nil, err
	}

	total := hlit + hdist
	allLens := make([]uint8, 0, total)
	for len(allLens) < total {
		sym, err := clCoder.Decode(r)
		if err != nil {
			return nil, nil, wrapTruncated(err)
		}
		switch {
		case sym < 16:
			allLens = append(allLens, uint8(sym))
		case sym == 16:
			if len(allLens) == 0 {
				return nil, nil, prefix.ErrMalformedCodeLengths
			}
			v, err := r.ReadBitsLSB(2)
			if err != nil {
				return nil, nil, wrapTruncated(err)
			}
			prev := allLens[len(allLens)-1]
			for k := 0; k < 3+int(v); k++ {
				allLens = append(allLens, prev)
			}
		case sym == 17:
			v, err := r.ReadBitsLSB(3)
			if err != nil {
				return nil, nil, wrapTruncated(err)
			}
			for k := 0; k < 3+int(v); k++ {
				allLens = append(allLens, 0)
			}
		case sym == 18:
			v, err := r.ReadBitsLSB(7)
			if err != nil {
				return nil, nil, wrapTruncated(err)
			}
			for k := 0; k < 11+int(v); k++ {
				allLens = append(allLens, 0)
			}
		default:
			return nil, nil, prefix.ErrMalformedCodeLengths
		}
	}
	allLens = allLens[:total]

	litCoder, err = prefix.NewCanonicalCoder(allLens[:hlit])
	if err != nil {
		return nil, nil, err
	}
	distCoder, err = prefix.NewCanonicalCoder(allLens[hlit:])
	if err != nil {
		return nil, nil, err
	}
	return litCoder, distCoder, nil
}
