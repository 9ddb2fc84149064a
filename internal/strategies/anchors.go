package strategies

import (
	"strings"

	"github.com/scales-okn/jed/internal/fuzz"
	"github.com/scales-okn/jed/internal/node"
)

// AnchorOne is the strictest anchor-reduction strategy: near-identical
// anchors, with first-token disagreement requiring near-containment of the
// whole names.
type AnchorOne struct{}

func (AnchorOne) Name() string { return "anchor_reduction_1" }

func (AnchorOne) Match(x, y *node.Node) bool {
	ax, ay := x.Forms.Anchor, y.Forms.Anchor
	if ax == "" || ay == "" {
		return false
	}
	// surname-only pair: a near match within two characters is a typo
	if x.SingleToken() && y.SingleToken() {
		diff := len(ax) - len(ay)
		if diff < 0 {
			diff = -diff
		}
		return diff <= 2 && fuzz.Ratio(ax, ay) >= 92
	}
	if x.SingleToken() || y.SingleToken() {
		return false
	}
	if fuzz.Ratio(ax, ay) < 92 {
		return false
	}
	fx, fy := x.Forms.Base[0], y.Forms.Base[0]
	if fx == fy || fx[:1] == fy[:1] {
		return true
	}
	// mismatched first tokens need the whole of one name inside the other
	return fuzz.PartialRatio(x.Name, y.Name) >= 98
}

// AnchorTwo loosens the anchor bound but demands corroboration from the
// full token sets, fused anchors, or first+last agreement.
type AnchorTwo struct{}

func (AnchorTwo) Name() string { return "anchor_reduction_2" }

func (AnchorTwo) Match(x, y *node.Node) bool {
	if x.SingleToken() || y.SingleToken() {
		return false
	}
	ax, ay := x.Forms.Anchor, y.Forms.Anchor

	if fuzz.Ratio(ax, ay) >= 90 && fuzz.TokenSetRatio(x.Name, y.Name) >= 98 {
		return true
	}
	// a split anchor like "gelp i" fuses back into "gelpi"
	if fuzz.Ratio(fusedTail(x), ay) >= 95 || fuzz.Ratio(ax, fusedTail(y)) >= 95 {
		return true
	}
	// first and last both agree, unless contradicting middle initials
	if fuzz.Ratio(x.Forms.Base[0], y.Forms.Base[0]) >= 90 && fuzz.Ratio(ax, ay) >= 90 {
		return !middleInitialsConflict(x, y)
	}
	return false
}

// AnchorThree is the loosest anchor family: first+last agreement, mashed
// or dotted joins, and "j"/"jude" treated as the judge title rather than
// a name.
type AnchorThree struct{}

func (AnchorThree) Name() string { return "anchor_reduction_3" }

func (AnchorThree) Match(x, y *node.Node) bool {
	if x.SingleToken() || y.SingleToken() {
		return false
	}
	sx, sy := stripJudgeToken(x), stripJudgeToken(y)
	if len(sx) < 2 || len(sy) < 2 {
		return false
	}
	if fuzz.Ratio(sx[0], sy[0]) >= 90 && fuzz.Ratio(sx[len(sx)-1], sy[len(sy)-1]) >= 90 {
		return true
	}
	// whole names mashed together catch dropped spaces
	if fuzz.Ratio(strings.Join(sx, ""), strings.Join(sy, "")) >= 95 {
		return true
	}
	// dotted initials joined: weak evidence, veto very short strings and
	// single-token header forms
	jx, jy := strings.Join(sx, "."), strings.Join(sy, ".")
	if len(jx) > 3 && len(jy) > 3 && fuzz.Ratio(jx, jy) >= 92 {
		return true
	}
	return false
}

// fusedTail joins a node's last two tokens, undoing split anchors.
func fusedTail(n *node.Node) string {
	b := n.Forms.Base
	if n.Forms.Suffix != "" {
		b = b[:len(b)-1]
	}
	if len(b) < 2 {
		return n.Forms.Anchor
	}
	return b[len(b)-2] + b[len(b)-1]
}

// middleInitialsConflict reports whether both names carry middle tokens
// whose first letters disagree.
func middleInitialsConflict(x, y *node.Node) bool {
	mx, my := middleTokens(x), middleTokens(y)
	if len(mx) == 0 || len(my) == 0 {
		return false
	}
	return mx[0][:1] != my[0][:1]
}

func middleTokens(n *node.Node) []string {
	b := n.Forms.Base
	if n.Forms.Suffix != "" {
		b = b[:len(b)-1]
	}
	if len(b) <= 2 {
		return nil
	}
	return b[1 : len(b)-1]
}

// stripJudgeToken drops a leading "j" or "jude" token, which docket text
// uses as a truncated judge title rather than a name.
func stripJudgeToken(n *node.Node) []string {
	b := n.Forms.Base
	if len(b) > 2 && (b[0] == "j" || b[0] == "jude") {
		return b[1:]
	}
	return b
}
