package strategies

import (
	"fmt"

	"github.com/scales-okn/jed/internal/fuzz"
	"github.com/scales-okn/jed/internal/node"
)

// Exact matches identical names, including any curated alternate
// representations on registry seeds.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (Exact) Match(x, y *node.Node) bool {
	if x.Name == y.Name {
		return true
	}
	for _, alt := range x.AltForms {
		if joinTokens(alt.Base) == y.Name {
			return true
		}
	}
	for _, alt := range y.AltForms {
		if joinTokens(alt.Base) == x.Name {
			return true
		}
	}
	return false
}

// Fuzzy matches whole names above a similarity threshold.
type Fuzzy struct {
	Threshold int
	// MultiTokenOnly skips lone surnames, which match everything fuzzily
	MultiTokenOnly bool
}

func (f Fuzzy) Name() string { return fmt.Sprintf("fuzzy[%d]", f.Threshold) }

func (f Fuzzy) Match(x, y *node.Node) bool {
	if f.MultiTokenOnly && (x.SingleToken() || y.SingleToken()) {
		return false
	}
	return fuzz.Ratio(x.Name, y.Name) >= f.Threshold
}

// CaseFuzzy is the case-scope fuzzy strategy: the bound loosens when one
// spelling dominates the other by usage, since the rare spelling is almost
// certainly a typo of the common one on the same docket.
type CaseFuzzy struct {
	Bound      int
	LooseBound int
	UsageRatio int
}

// DefaultCaseFuzzy returns the case-scope bounds.
func DefaultCaseFuzzy() CaseFuzzy {
	return CaseFuzzy{Bound: 93, LooseBound: 90, UsageRatio: 20}
}

func (f CaseFuzzy) Name() string { return fmt.Sprintf("fuzzy[%d/%d]", f.Bound, f.LooseBound) }

func (f CaseFuzzy) Match(x, y *node.Node) bool {
	score := fuzz.Ratio(x.Name, y.Name)
	if score >= f.Bound {
		return true
	}
	lo, hi := x.UsageCount, y.UsageCount
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo > 0 && hi/lo > f.UsageRatio && score >= f.LooseBound {
		return true
	}
	return false
}

func joinTokens(toks []string) string {
	out := ""
	for i, t := range toks {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
