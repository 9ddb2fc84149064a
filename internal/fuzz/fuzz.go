// Package fuzz provides integer-percentage string similarity scores used by
// the matching strategies. Scores range 0-100 and are derived from
// Levenshtein edit distance, so identical strings score 100 and disjoint
// strings trend toward 0.
package fuzz

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns the normalized similarity of two strings as a percentage:
// (len(a)+len(b)-distance) / (len(a)+len(b)), scaled to 0-100.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return round(100 * float64(total-dist) / float64(total))
}

// round rounds to the nearest integer, matching the reference scorer.
func round(f float64) int {
	if f < 0 {
		return 0
	}
	return int(f + 0.5)
}

// PartialRatio returns the best Ratio between the shorter string and any
// equal-length window of the longer string.
func PartialRatio(a, b string) int {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if len(shorter) == len(longer) {
		return Ratio(string(shorter), string(longer))
	}
	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := Ratio(string(shorter), string(longer[i:i+len(shorter)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// TokenSortRatio compares the strings with their tokens sorted
// alphabetically, so word order does not matter.
func TokenSortRatio(a, b string) int {
	return Ratio(sortTokens(a), sortTokens(b))
}

// TokenSetRatio compares the strings on their shared token set plus each
// side's leftover tokens, taking the best of the three pairings.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)

	var inter, diffA, diffB []string
	for tok := range ta {
		if tb[tok] {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(inter, " ")
	combA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	combB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	best := Ratio(base, combA)
	if s := Ratio(base, combB); s > best {
		best = s
	}
	if s := Ratio(combA, combB); s > best {
		best = s
	}
	return best
}

func sortTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
