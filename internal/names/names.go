// Package names builds the token forms used to compare judge name mentions.
// Every candidate node carries its base tokens plus inferred variants
// (initialed first/middle tokens, de-hyphenated spellings), nickname
// expansions, and unified spellings, keyed by which tokens were abbreviated.
package names

import (
	"strings"
)

// suffixesTitles are generational suffixes that never count as the anchor.
var suffixesTitles = map[string]bool{
	"i": true, "ii": true, "iii": true, "iv": true, "v": true,
	"jr": true, "jnr": true, "snr": true, "sr": true,
	"senior": true, "junior": true,
}

// IsSuffix reports whether tok is a generational suffix.
func IsSuffix(tok string) bool {
	return suffixesTitles[strings.ToLower(tok)]
}

// AbbrevKey selects a variant pool by which name parts were abbreviated to
// initials when the variants were generated.
type AbbrevKey struct {
	First  bool
	Middle bool
}

// Pool identifies which family of token variants a comparison draws from.
type Pool string

const (
	PoolPlain     Pool = "plain"
	PoolUnified   Pool = "unified"
	PoolNicknames Pool = "nicknames"
)

// Forms holds every token representation derived from a mention name.
type Forms struct {
	// Base is the lowercase whitespace split of the name.
	Base []string
	// Suffix is the generational suffix, empty if none.
	Suffix string
	// Anchor is the last non-suffix token.
	Anchor string
	// Initials is the concatenated first letters without the suffix.
	Initials string
	// InitialsWithSuffix appends the suffix token to Initials.
	InitialsWithSuffix string

	// Plain, Unified, and Nick map abbreviation combinations to token-list
	// variants for that combination.
	Plain   map[AbbrevKey][][]string
	Unified map[AbbrevKey][][]string
	Nick    map[AbbrevKey][][]string
}

// Build computes all token forms for a cleaned, lowercased name.
func Build(name string) Forms {
	base := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	f := Forms{
		Base:    base,
		Plain:   make(map[AbbrevKey][][]string),
		Unified: make(map[AbbrevKey][][]string),
		Nick:    make(map[AbbrevKey][][]string),
	}
	if len(base) == 0 {
		return f
	}

	working := base
	if len(base) > 1 && IsSuffix(base[len(base)-1]) {
		f.Suffix = base[len(base)-1]
		working = base[:len(base)-1]
	}
	f.Anchor = working[len(working)-1]

	var sb strings.Builder
	for _, tok := range working {
		sb.WriteString(tok[:1])
	}
	f.Initials = sb.String()
	f.InitialsWithSuffix = f.Initials
	if f.Suffix != "" {
		f.InitialsWithSuffix += f.Suffix
	}

	for _, key := range []AbbrevKey{
		{false, false}, {true, false}, {false, true}, {true, true},
	} {
		variants := abbreviate(working, key)
		variants = withDehyphenated(variants)
		f.Plain[key] = appendSuffix(variants, f.Suffix)
		f.Unified[key] = appendSuffix(unifiedVariants(variants), f.Suffix)
		f.Nick[key] = appendSuffix(nicknameVariants(variants), f.Suffix)
	}
	return f
}

// TokenCount returns the number of base tokens excluding the suffix.
func (f Forms) TokenCount() int {
	if f.Suffix != "" {
		return len(f.Base) - 1
	}
	return len(f.Base)
}

// Variants returns the variant lists for the given pool and abbreviation
// combination. The nicknames pool includes the plain variants as well,
// since a nickname on one side must still match a plain form on the other.
func (f Forms) Variants(pool Pool, key AbbrevKey) [][]string {
	switch pool {
	case PoolUnified:
		return f.Unified[key]
	case PoolNicknames:
		out := make([][]string, 0, len(f.Plain[key])+len(f.Nick[key]))
		out = append(out, f.Plain[key]...)
		out = append(out, f.Nick[key]...)
		return out
	default:
		return f.Plain[key]
	}
}

// abbreviate replaces the first and/or middle tokens with their initials.
// Single-letter tokens are left alone.
func abbreviate(working []string, key AbbrevKey) [][]string {
	out := make([]string, len(working))
	copy(out, working)
	if key.First && len(out) > 0 && len(out[0]) > 1 {
		out[0] = out[0][:1]
	}
	if key.Middle {
		for i := 1; i < len(out)-1; i++ {
			if len(out[i]) > 1 {
				out[i] = out[i][:1]
			}
		}
	}
	return [][]string{out}
}

// withDehyphenated adds variants with hyphenated tokens fused and split.
func withDehyphenated(variants [][]string) [][]string {
	out := variants
	for _, v := range variants {
		hyphenated := false
		fused := make([]string, len(v))
		var split []string
		for i, tok := range v {
			fused[i] = tok
			if strings.Contains(tok, "-") {
				hyphenated = true
				fused[i] = strings.ReplaceAll(tok, "-", "")
				split = append(split, strings.Split(tok, "-")...)
			} else {
				split = append(split, tok)
			}
		}
		if hyphenated {
			out = append(out, fused, split)
		}
	}
	return out
}

// unifiedVariants maps every token through the spelling unifier.
func unifiedVariants(variants [][]string) [][]string {
	out := make([][]string, 0, len(variants))
	for _, v := range variants {
		u := make([]string, len(v))
		for i, tok := range v {
			if canon, ok := NameUnifier[tok]; ok {
				u[i] = canon
			} else {
				u[i] = tok
			}
		}
		out = append(out, u)
	}
	return out
}

// nicknameVariants expands the first token through the nickname table.
// A nickname can map to several formal names, producing one variant each.
func nicknameVariants(variants [][]string) [][]string {
	var out [][]string
	for _, v := range variants {
		if len(v) == 0 {
			continue
		}
		for _, formal := range Nicknames[v[0]] {
			n := make([]string, len(v))
			copy(n, v)
			n[0] = formal
			out = append(out, n)
		}
	}
	return out
}

func appendSuffix(variants [][]string, suffix string) [][]string {
	if suffix == "" {
		return variants
	}
	out := make([][]string, len(variants))
	for i, v := range variants {
		w := make([]string, len(v), len(v)+1)
		copy(w, v)
		out[i] = append(w, suffix)
	}
	return out
}
