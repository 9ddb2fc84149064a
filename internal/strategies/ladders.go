package strategies

import "github.com/scales-okn/jed/internal/names"

// CaseLadder is the strategy order for the per-case sweep. Within one case
// every mention shares a docket, so the ladder reaches permissive anchor
// reductions quickly.
func CaseLadder() []Matcher {
	return []Matcher{
		DefaultCaseFuzzy(),
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolPlain},
		TiT{Key: names.AbbrevKey{Middle: true}, Pool: names.PoolPlain},
		TiT{Key: names.AbbrevKey{First: true, Middle: true}, Pool: names.PoolPlain},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolUnified},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolNicknames},
		AnchorOne{},
		AnchorTwo{},
		AnchorThree{},
	}
}

// CourtLadder is the strategy order for the per-court sweep.
func CourtLadder() []Matcher {
	return []Matcher{
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolPlain},
		TiT{Key: names.AbbrevKey{Middle: true}, Pool: names.PoolPlain},
		TiT{Key: names.AbbrevKey{First: true, Middle: true}, Pool: names.PoolPlain},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolUnified},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolNicknames},
		TiT{Key: names.AbbrevKey{Middle: true}, Pool: names.PoolNicknames},
		Initialisms{},
		SingleTokenSelf{},
		Crossover{},
	}
}

// FreeLadder is the strategy order for the global sweep, where no shared
// docket or court constrains the pool: stricter entry, extra guards.
func FreeLadder() []Matcher {
	return []Matcher{
		Exact{},
		Fuzzy{Threshold: 95, MultiTokenOnly: true},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolPlain, FreeGuards: true},
		TiT{Key: names.AbbrevKey{Middle: true}, Pool: names.PoolPlain, FreeGuards: true},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolUnified, FreeGuards: true},
		TiT{Key: names.AbbrevKey{}, Pool: names.PoolNicknames, FreeGuards: true},
		TiT{Key: names.AbbrevKey{Middle: true}, Pool: names.PoolNicknames, FreeGuards: true},
		Vacuum{},
		TokenSort{Threshold: 98},
		VanSweep{},
		Initialisms{},
		SingleLetters{},
	}
}
