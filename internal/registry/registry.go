// Package registry loads the ground-truth judge registries: the FJC
// Article III codebook and the bankruptcy/magistrate roster. Registry
// entries seed the court-agnostic resolution phase as confirmed
// identities that mention-derived nodes can fold into.
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/scales-okn/jed/internal/types"
)

// Seed is one registry identity prepared for arena insertion. Name is
// the canonical form; Alts carry the remaining codebook forms and any
// curated extra representations.
type Seed struct {
	Name       string
	Alts       []string
	Courts     []string
	FJCID      string
	RegistryID string
	// LatestTermination and Terminated drive dormancy filtering for
	// codebook seeds. Roster seeds are never dormant.
	LatestTermination time.Time
	Terminated        bool
}

// Unallocated is the court key for seeds whose codebook rows named no
// recognizable court.
const Unallocated = "unallocated"

var (
	accentRepl = strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"í", "i", "ì", "i", "î", "i", "ï", "i",
		"ó", "o", "ò", "o", "ô", "o", "ö", "o", "õ", "o",
		"ú", "u", "ù", "u", "û", "u", "ü", "u",
		"ñ", "n", "ç", "c", "ý", "y",
	)
	possessiveRe  = regexp.MustCompile(`(?i)('s|\\'s)`)
	digitsRe      = regexp.MustCompile(`[0-9]`)
	junkPunctRe   = regexp.MustCompile(`[!"#%&*+,/=?@^_` + "`" + `~$|\\]`)
	dotTightRe    = regexp.MustCompile(`[.](\S)`)
	dotLooseRe    = regexp.MustCompile(`[.]\s`)
	apostGapRe    = regexp.MustCompile(`'\s+|\s+'`)
	edgeMarkRe    = regexp.MustCompile(`(^[-']|[-']$)`)
	hyphenGapRe   = regexp.MustCompile(`(\S) ?- ?(\S)`)
	bracketOpenRe = regexp.MustCompile(`\[([a-zA-Z])`)
	bracketShutRe = regexp.MustCompile(`([a-zA-Z])\]`)
)

// CleanName normalizes a registry name to the lowercase token form the
// resolution engine matches on. It strips accents, possessives, digits
// and stray punctuation, rejoins split hyphens and apostrophes, and
// unwraps the codebook's bracketed goes-by notation
// ("C[hristian] Rozolis" reads as the full name "Christian Rozolis").
func CleanName(name string) string {
	s := accentRepl.Replace(name)
	s = possessiveRe.ReplaceAllString(s, "")
	s = digitsRe.ReplaceAllString(s, "")
	s = junkPunctRe.ReplaceAllString(s, " ")
	s = dotTightRe.ReplaceAllString(s, " $1")
	s = dotLooseRe.ReplaceAllString(s, " ")
	s = apostGapRe.ReplaceAllString(s, "'")
	s = edgeMarkRe.ReplaceAllString(s, "")
	s = hyphenGapRe.ReplaceAllString(s, "$1-$2")
	s = bracketOpenRe.ReplaceAllString(s, "$1")
	s = bracketShutRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, ".", "")
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// FJCSeeds turns collapsed codebook judges into per-court seed lists.
// The shortest name form is canonical since the codebook brackets the
// unused parts of a name; longer forms and curated representations ride
// along as alternates. A judge appears once per court served, and once
// under Unallocated when no court is known.
func FJCSeeds(judges []types.FJCJudge) map[string][]Seed {
	out := make(map[string][]Seed)
	for _, j := range judges {
		forms := append([]string(nil), j.NameForms...)
		if len(forms) == 0 {
			forms = []string{CleanName(j.FullName)}
		}
		sort.Slice(forms, func(a, b int) bool {
			if len(forms[a]) != len(forms[b]) {
				return len(forms[a]) < len(forms[b])
			}
			return forms[a] < forms[b]
		})
		seed := Seed{
			Name:              forms[0],
			Alts:              append(forms[1:len(forms):len(forms)], AdditionalRepresentations[j.NID]...),
			Courts:            j.Courts,
			FJCID:             j.NID,
			LatestTermination: j.LatestTermination,
			Terminated:        j.Terminated,
		}
		// Dynasty members seed under their curated suffixed name so
		// relatives sharing a full name stay distinct nodes.
		if curated, ok := Dynasties[j.NID]; ok && curated != seed.Name {
			seed.Alts = append([]string{seed.Name}, seed.Alts...)
			seed.Name = curated
		}
		if len(j.Courts) == 0 {
			out[Unallocated] = append(out[Unallocated], seed)
			continue
		}
		for _, court := range j.Courts {
			out[court] = append(out[court], seed)
		}
	}
	return out
}

// RosterSeeds turns roster judges into per-court seed lists.
func RosterSeeds(judges []types.RegistryJudge) map[string][]Seed {
	out := make(map[string][]Seed)
	for _, j := range judges {
		seed := Seed{
			Name:       CleanName(j.FullName),
			Courts:     j.Courts,
			RegistryID: j.RegistryID,
		}
		if seed.Name == "" {
			continue
		}
		if len(j.Courts) == 0 {
			out[Unallocated] = append(out[Unallocated], seed)
			continue
		}
		for _, court := range j.Courts {
			out[court] = append(out[court], seed)
		}
	}
	return out
}

// Validate checks a seed before arena insertion.
func (s Seed) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("registry seed missing name (fjc=%s roster=%s)", s.FJCID, s.RegistryID)
	}
	if s.FJCID == "" && s.RegistryID == "" {
		return fmt.Errorf("registry seed %q carries no ground-truth ID", s.Name)
	}
	if s.FJCID != "" && s.RegistryID != "" {
		return fmt.Errorf("registry seed %q carries both ground-truth IDs", s.Name)
	}
	return nil
}
