package strategies

import (
	"fmt"

	"github.com/scales-okn/jed/internal/names"
	"github.com/scales-okn/jed/internal/node"
)

// TokensInTokens reports whether sub's tokens all appear in super as an
// ordered subsequence. Repeated tokens must be matched separately
// ("george h george" is not inside "george h washington") and matches must
// occur at ascending indices ("lewis a" is not inside "wilma a lewis").
func TokensInTokens(sub, super []string) bool {
	if len(sub) == 0 || len(sub) > len(super) {
		return false
	}
	idx := 0
	for _, tok := range sub {
		found := false
		for idx < len(super) {
			cur := super[idx]
			idx++
			if cur == tok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TiT is the tokens-in-tokens containment strategy over one variant pool
// and abbreviation combination. Containment is checked in both directions.
type TiT struct {
	Key  names.AbbrevKey
	Pool names.Pool
	// FreeGuards enables the extra two-token vetoes used at free scope
	FreeGuards bool
}

func (t TiT) Name() string {
	return fmt.Sprintf("tokens_in_tokens[%s first=%t middle=%t]", t.Pool, t.Key.First, t.Key.Middle)
}

func (t TiT) Match(x, y *node.Node) bool {
	// single-token names only ever match on an identical anchor
	if x.SingleToken() || y.SingleToken() {
		return x.Forms.Anchor == y.Forms.Anchor && x.Forms.Anchor != ""
	}
	if t.FreeGuards && !freeGuardsPass(x, y) {
		return false
	}
	for _, vx := range variantsOf(x, t.Pool, t.Key) {
		for _, vy := range variantsOf(y, t.Pool, t.Key) {
			if TokensInTokens(vx, vy) || TokensInTokens(vy, vx) {
				return true
			}
		}
	}
	return false
}

// variantsOf collects the token variants for n, including any curated
// additional representations carried by registry seeds.
func variantsOf(n *node.Node, pool names.Pool, key names.AbbrevKey) [][]string {
	out := n.Forms.Variants(pool, key)
	for _, alt := range n.AltForms {
		out = append(out, alt.Variants(pool, key)...)
	}
	return out
}

// freeGuardsPass applies the two-token vetoes used at free scope, where a
// short name matching inside a longer one is weaker evidence.
func freeGuardsPass(x, y *node.Node) bool {
	short, long := x, y
	if len(long.Forms.Base) < len(short.Forms.Base) {
		short, long = long, short
	}
	if len(short.Forms.Base) != 2 {
		return true
	}
	base := short.Forms.Base
	last := base[len(base)-1]

	// a one-character trailing token drowns in longer names
	if len(last) == 1 {
		return false
	}
	// the short name's surname matching a middle token is coincidence,
	// not containment
	lb := long.Forms.Base
	for i := 1; i < len(lb)-1; i++ {
		if lb[i] == last {
			return false
		}
	}
	// suffix holders only fold into names carrying the same suffix
	if short.Forms.Suffix != "" && long.Forms.Suffix != "" && short.Forms.Suffix != long.Forms.Suffix {
		return false
	}
	return true
}
