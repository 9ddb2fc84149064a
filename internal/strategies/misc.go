package strategies

import (
	"github.com/scales-okn/jed/internal/fuzz"
	"github.com/scales-okn/jed/internal/node"
)

// Initialisms matches heavily abbreviated three-token forms like
// "g b smith" or "george b s" against the long names whose initials they
// spell.
type Initialisms struct{}

func (Initialisms) Name() string { return "initialisms" }

func (Initialisms) Match(x, y *node.Node) bool {
	return initialismOf(x, y) || initialismOf(y, x)
}

// initialismOf reports whether short is an initial pattern of long.
func initialismOf(short, long *node.Node) bool {
	sb, lb := baseNoSuffix(short), baseNoSuffix(long)
	if len(sb) != 3 || len(lb) != 3 || short.Forms.Suffix != "" {
		return false
	}
	// pattern: multi-char first, one-char middle, one-char anchor
	if len(sb[0]) <= 1 || len(sb[1]) != 1 || len(sb[2]) != 1 {
		return false
	}
	if sb[0] != lb[0] && sb[0][:1] != lb[0][:1] {
		return false
	}
	return sb[1] == lb[1][:1] && sb[2] == lb[2][:1]
}

// SingleTokenSelf reduces lone-surname variants of each other: possessive
// forms ("marshalls" for "marshall") and transposition typos with
// identical character multisets.
type SingleTokenSelf struct{}

func (SingleTokenSelf) Name() string { return "single_token_self" }

func (SingleTokenSelf) Match(x, y *node.Node) bool {
	if !x.SingleToken() || !y.SingleToken() {
		return false
	}
	ax, ay := x.Forms.Anchor, y.Forms.Anchor
	if ax == ay+"s" || ay == ax+"s" {
		return true
	}
	return fuzz.Ratio(ax, ay) > 80 && sameCharCounts(ax, ay)
}

// Crossover matches a lone surname against a full name carrying that
// surname: possessive forms and equal-multiset typos. Run conservatively,
// since several full names can claim the same surname.
type Crossover struct{}

func (Crossover) Name() string { return "long_short_crossover" }

func (Crossover) Match(x, y *node.Node) bool {
	if x.SingleToken() == y.SingleToken() {
		return false
	}
	short, long := x, y
	if long.SingleToken() {
		short, long = long, short
	}
	sa, la := short.Forms.Anchor, long.Forms.Anchor
	if sa == la+"s" || la == sa+"s" {
		return true
	}
	return fuzz.Ratio(sa, la) >= 80 && sameCharCounts(sa, la)
}

// Vacuum picks up stragglers whose first and last names both agree
// strongly, with vetoes for contradicting middle initials and suffixes.
type Vacuum struct{}

func (Vacuum) Name() string { return "vacuum" }

func (Vacuum) Match(x, y *node.Node) bool {
	if x.SingleToken() || y.SingleToken() {
		return false
	}
	if fuzz.Ratio(x.Forms.Base[0], y.Forms.Base[0]) < 85 {
		return false
	}
	if fuzz.Ratio(x.Forms.Anchor, y.Forms.Anchor) < 85 {
		return false
	}
	if middleInitialsConflict(x, y) {
		return false
	}
	if x.Forms.Suffix != "" && y.Forms.Suffix != "" && x.Forms.Suffix != y.Forms.Suffix {
		return false
	}
	return true
}

// TokenSort matches names whose sorted tokens nearly agree, catching
// transposed name orders. Reversed first/last pairs are vetoed: "mark a
// roberts" and "robert a marks" sort alike but are different people.
type TokenSort struct {
	Threshold int
}

func (TokenSort) Name() string { return "token_sort" }

func (t TokenSort) Match(x, y *node.Node) bool {
	xb, yb := baseNoSuffix(x), baseNoSuffix(y)
	if len(xb) < 3 || len(yb) < 3 {
		return false
	}
	if fuzz.TokenSortRatio(x.Name, y.Name) < t.Threshold {
		return false
	}
	// reversed-name veto: x's first resembles y's last and vice versa
	if fuzz.Ratio(xb[0], yb[len(yb)-1]) >= 85 && fuzz.Ratio(xb[len(xb)-1], yb[0]) >= 85 {
		return false
	}
	// differing one-letter middle initials are a hard contradiction
	mx, my := middleTokens(x), middleTokens(y)
	if len(mx) > 0 && len(my) > 0 &&
		len(mx[0]) == 1 && len(my[0]) == 1 && mx[0] != my[0] {
		return false
	}
	return true
}

// VanSweep fuses particle surnames ("van sickle" -> "vansickle") before
// comparing anchors, catching inconsistent particle spacing.
type VanSweep struct{}

func (VanSweep) Name() string { return "van_sweep" }

func (v VanSweep) Match(x, y *node.Node) bool {
	ax, okx := fusedParticleAnchor(x)
	ay, oky := fusedParticleAnchor(y)
	if !okx && !oky {
		return false
	}
	return fuzz.Ratio(ax, ay) >= 90
}

// fusedParticleAnchor returns the anchor with a preceding "van" fused in,
// and whether a particle was present.
func fusedParticleAnchor(n *node.Node) (string, bool) {
	b := baseNoSuffix(n)
	if len(b) >= 2 && b[len(b)-2] == "van" {
		return "van" + b[len(b)-1], true
	}
	return n.Forms.Anchor, false
}

// SingleLetters matches names led by a bare initial ("j smith") against
// expanded forms, requiring agreement beyond the initial itself.
type SingleLetters struct{}

func (SingleLetters) Name() string { return "single_letters" }

func (SingleLetters) Match(x, y *node.Node) bool {
	short, long := x, y
	if len(baseNoSuffix(long)) > 0 && len(baseNoSuffix(long)[0]) == 1 {
		short, long = long, short
	}
	sb, lb := baseNoSuffix(short), baseNoSuffix(long)
	if len(sb) < 2 || len(lb) < 2 || len(sb[0]) != 1 {
		return false
	}
	if sb[0] != lb[0][:1] {
		return false
	}
	// second tokens agree outright
	if fuzz.TokenSortRatio(short.Name, long.Name) > 80 && sb[1] == lb[1] {
		return true
	}
	// or the initial pattern matches and the anchors are identical
	if fuzz.Ratio(short.Forms.InitialsWithSuffix, long.Forms.InitialsWithSuffix) >= 92 &&
		short.Forms.Anchor == long.Forms.Anchor {
		return true
	}
	return false
}

func baseNoSuffix(n *node.Node) []string {
	b := n.Forms.Base
	if n.Forms.Suffix != "" {
		return b[:len(b)-1]
	}
	return b
}

func sameCharCounts(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[rune]int)
	for _, r := range a {
		counts[r]++
	}
	for _, r := range b {
		counts[r]--
		if counts[r] < 0 {
			return false
		}
	}
	return true
}
