package deflate

// RFC 1951 alphabets: the literal/length alphabet (0-285: literals
// 0-255, end-of-block 256, length codes 257-285) and the distance
// alphabet (0-29).
const (
	endOfBlock        = 256
	lengthCodesStart  = 257
	literalAlphaSize  = 286
	distAlphaSize     = 30
	codeLengthAlphaSize = 19
	maxCodeLength     = 15 // RFC 1951 bounds both alphabets to 15 bits.
	maxWindowSize     = 1 << 15
)

// lengthBase and lengthExtraBits give, for length code i (0-28,
// corresponding to symbols 257-285), the smallest length it represents
// and how many extra bits follow to select the exact length within its
// range.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtraBits give the same for the 30 distance codes.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtraBits = [30]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codegenOrder is the fixed order HCLEN code-length-alphabet lengths are
// transmitted in.
var codegenOrder = [codeLengthAlphaSize]int{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// lengthCodeFor returns the length-alphabet symbol and extra-bit count
// for a match length (3-258).
func lengthCodeFor(length int) (symbol int, extraBits uint, extraVal int) {
	i := 28
	for lengthBase[i] > length {
		i--
	}
	return lengthCodesStart + i, lengthExtraBits[i], length - lengthBase[i]
}

// distCodeFor returns the distance-alphabet symbol and extra-bit count
// for a back-reference distance (1-32768).
func distCodeFor(dist int) (symbol int, extraBits uint, extraVal int) {
	i := 29
	for distBase[i] > dist {
		i--
	}
	return i, distExtraBits[i], dist - distBase[i]
}

// fixedLiteralLengths is the RFC 1951 §3.2.6 fixed code-length
// assignment for the literal/length alphabet.
func fixedLiteralLengths() []uint8 {
	lens := make([]uint8, literalAlphaSize+2) // codes go up to 287
	for i := 0; i <= 143; i++ {
		lens[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lens[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lens[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lens[i] = 8
	}
	return lens
}

// fixedDistLengths is the RFC 1951 fixed code-length assignment for the
// distance alphabet: all 5 bits.
func fixedDistLengths() []uint8 {
	lens := make([]uint8, 32)
	for i := range lens {
		lens[i] = 5
	}
	return lens
}
