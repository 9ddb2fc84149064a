// Package strategies implements the pairwise matching strategy library.
// A phase runs a ladder of strategies, strict to permissive, over a node
// pool; each strategy proposes merges which the arena's winner rules then
// accept, refuse, or route through ambiguity marking.
package strategies

import (
	"context"

	"github.com/scales-okn/jed/internal/node"
)

// Matcher decides whether two eligible nodes refer to the same entity.
type Matcher interface {
	// Name identifies the strategy in audit events
	Name() string
	// Match reports whether x and y should merge
	Match(x, y *node.Node) bool
}

// Options controls a sweep.
type Options struct {
	// Conservative enables ambiguity assessment: when a node matches
	// several distinct ground-truth targets equally, it is marked
	// ambiguous instead of merged. Used at court and free scope.
	Conservative bool
}

// Run performs one greedy pairwise sweep of matcher over the arena.
// Comparisons are O(n^2) on the eligible pool; nodes absorbed mid-sweep
// stop participating immediately. Returns the number of merges performed.
func Run(ctx context.Context, arena *node.Arena, matcher Matcher, opts Options) int {
	pool := arena.Nodes()
	merges := 0
	for i := 0; i < len(pool); i++ {
		x := pool[i]
		if !x.Eligible() {
			continue
		}
		for j := i + 1; j < len(pool); j++ {
			y := pool[j]
			if !x.Eligible() {
				break
			}
			if !y.Eligible() {
				continue
			}
			if !matcher.Match(x, y) {
				continue
			}

			winner, loser, refused := arena.ChooseWinner(x, y)
			if refused {
				arena.Refuse(ctx, x, y, matcher.Name())
				continue
			}

			if opts.Conservative && loser.GroundTruthID() == "" && winner.GroundTruthID() != "" {
				if cands := groundTruthMatches(arena, loser, matcher); len(cands) > 1 {
					arena.MarkAmbiguous(ctx, loser, cands, matcher.Name())
					continue
				}
			}

			arena.Absorb(ctx, winner, loser, matcher.Name())
			merges++
			if winner != x {
				// x was absorbed; move on to the next outer node
				break
			}
		}
	}
	return merges
}

// groundTruthMatches returns the eligible confirmed-identity nodes that
// match n under matcher, at most one per distinct ground-truth ID.
func groundTruthMatches(arena *node.Arena, n *node.Node, matcher Matcher) []*node.Node {
	var out []*node.Node
	seen := make(map[string]bool)
	for _, g := range arena.Nodes() {
		if !g.Eligible() || g.ID == n.ID {
			continue
		}
		id := g.GroundTruthID()
		if id == "" || seen[id] {
			continue
		}
		if matcher.Match(n, g) {
			seen[id] = true
			out = append(out, g)
		}
	}
	return out
}

// Ladder runs a sequence of matchers in order and returns total merges.
func Ladder(ctx context.Context, arena *node.Arena, matchers []Matcher, opts Options) int {
	total := 0
	for _, m := range matchers {
		total += Run(ctx, arena, m, opts)
	}
	return total
}
