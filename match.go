// Package deflate implements a lossless, general-purpose byte-stream
// compressor and decompressor for a Deflate-family format: LZ77-style
// sliding-window match finding (see the matchfinder subpackage) followed
// by length-limited canonical prefix coding (see the prefix subpackage),
// framed into RFC 1951-shaped blocks.
package deflate

import "github.com/vela-go/deflate/matchfinder"

// A Match is the basic unit of LZ77 compression: some number of
// unmatched (literal) bytes followed by an optional back-reference.
// A sequence of Matches, concatenated, covers an entire input: the last
// Match in a sequence may have Length 0 if the input ends on unmatched
// bytes.
//
// Match is an alias of matchfinder.Match, so any MatchFinder's output
// can be passed directly to the block encoder without conversion.
type Match = matchfinder.Match

// A MatchFinder performs the LZ77 stage of compression: it scans src for
// repeated byte runs and appends the Matches describing them to dst.
type MatchFinder = matchfinder.MatchFinder
