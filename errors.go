package deflate

import "errors"

// Sentinel errors returned while decoding a block stream.
var (
	// ErrTruncatedStream is returned when the input ends mid-symbol or
	// mid-block.
	ErrTruncatedStream = errors.New("deflate: truncated stream")
	// ErrInvalidBlockType is returned when a block header's BTYPE field
	// is 11 (reserved).
	ErrInvalidBlockType = errors.New("deflate: invalid block type")
	// ErrOversizeDistance is returned when a decoded back-reference
	// distance is 0 or exceeds the 32 KiB window.
	ErrOversizeDistance = errors.New("deflate: back-reference distance out of range")
	// ErrOversizeLength is returned when a back-reference would copy
	// from before the start of the decoded output.
	ErrOversizeLength = errors.New("deflate: back-reference reads before start of output")
)
