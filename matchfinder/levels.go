package matchfinder

// chainDepthByLevel mirrors the shape of a typical compression-level
// table (github.com/andybalholm/pack's flate.levels): as the level
// increases, the match finder is allowed to look further down each hash
// chain, trading speed for ratio. Level 0 means "don't search" and has
// no entry here; New panics if asked for it.
var chainDepthByLevel = [...]int{
	4: 16,
	5: 32,
	6: DefaultMaxChainDepth,
	7: 128,
	8: 256,
	9: 1024,
}

// New returns the MatchFinder appropriate for compression level (1-9).
// Levels 1-3 use FastFinder (level 3 enables lazy matching); levels 4-9
// use HashChainFinder with increasing search depth.
func New(level int) MatchFinder {
	switch {
	case level <= 0:
		panic("matchfinder: level 0 has no MatchFinder; callers must write a stored block instead")
	case level == 1:
		return NewFastFinder(false)
	case level == 2:
		return NewFastFinder(false)
	case level == 3:
		return NewFastFinder(true)
	case level >= len(chainDepthByLevel):
		return NewHashChainFinder(chainDepthByLevel[len(chainDepthByLevel)-1])
	default:
		return NewHashChainFinder(chainDepthByLevel[level])
	}
}
