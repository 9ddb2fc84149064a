package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/scales-okn/jed/internal/types"
)

// appointmentSlots is how many numbered appointment column groups the
// codebook carries per judge row.
const appointmentSlots = 6

// FJCOptions controls codebook ingestion.
type FJCOptions struct {
	// Low and High bound the active window; appointments entirely
	// outside it are skipped. Zero values disable the bound.
	Low  time.Time
	High time.Time
	// CourtAbb maps a codebook court name to the abbreviation used by
	// the mention data ("ilnd"). Nil keeps the lowercased full name.
	CourtAbb func(string) string
}

// LoadFJC reads the wide-format FJC codebook CSV and collapses it to one
// judge per NID: every appointment contributes its court, the earliest
// commission and latest termination win, and the name columns yield the
// matchable name forms.
func LoadFJC(path string, opts FJCOptions) ([]types.FJCJudge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening codebook: %w", err)
	}
	defer f.Close()
	judges, err := ReadFJC(f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading codebook %s: %w", path, err)
	}
	return judges, nil
}

// ReadFJC parses codebook CSV rows from r. Exposed separately so tests
// and the tag command can feed in-memory data.
func ReadFJC(r io.Reader, opts FJCOptions) ([]types.FJCJudge, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["nid"]; !ok {
		return nil, fmt.Errorf("codebook missing nid column")
	}

	byNID := make(map[string]*types.FJCJudge)
	sitting := make(map[string]bool)
	var order []string

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		line++

		nid := field(rec, col, "nid")
		if nid == "" {
			continue
		}
		full := field(rec, col, "FullName")
		if full == "" {
			full = joinNonEmpty(
				field(rec, col, "First Name"),
				field(rec, col, "Middle Name"),
				field(rec, col, "Last Name"),
				field(rec, col, "Suffix"),
			)
		}

		j := byNID[nid]
		if j == nil {
			j = &types.FJCJudge{NID: nid, FullName: full}
			j.SimplifiedName = CleanName(full)
			j.NameForms = nameForms(full)
			byNID[nid] = j
			order = append(order, nid)
		}

		for slot := 1; slot <= appointmentSlots; slot++ {
			court := field(rec, col, fmt.Sprintf("Court Name (%d)", slot))
			if court == "" {
				continue
			}
			commission, _ := parseDate(field(rec, col, fmt.Sprintf("Commission Date (%d)", slot)))
			termination, terminated := parseDate(field(rec, col, fmt.Sprintf("Termination Date (%d)", slot)))
			if commission.IsZero() && terminated {
				// codebook rows sometimes omit the commission; assume
				// the start of the termination year
				commission = time.Date(termination.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
			}
			if !opts.High.IsZero() && !commission.IsZero() && commission.After(opts.High) {
				continue
			}
			if !opts.Low.IsZero() && terminated && termination.Before(opts.Low) {
				continue
			}

			if abb := opts.CourtAbb; abb != nil {
				court = abb(court)
			} else {
				court = strings.ToLower(strings.TrimSpace(court))
			}
			j.Courts = appendUnique(j.Courts, court)

			if !commission.IsZero() &&
				(j.EarliestCommission.IsZero() || commission.Before(j.EarliestCommission)) {
				j.EarliestCommission = commission
			}
			if !terminated {
				// a sitting appointment keeps the judge active no
				// matter what earlier seats say
				sitting[nid] = true
			} else if termination.After(j.LatestTermination) {
				j.LatestTermination = termination
			}
		}
	}

	out := make([]types.FJCJudge, 0, len(order))
	for _, nid := range order {
		j := byNID[nid]
		if len(j.Courts) == 0 {
			continue
		}
		j.Terminated = !sitting[nid] && !j.LatestTermination.IsZero()
		out = append(out, *j)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].NID < out[b].NID })
	return out, nil
}

var bracketedRe = regexp.MustCompile(`([a-zA-Z]*)\[([a-zA-Z]+)\]`)

// nameForms derives the matchable forms of a codebook full name. The
// bracket notation marks the unused part of a name, so
// "C[hristian] John Rozolis" yields both the expanded form and the
// colloquial "c john rozolis".
func nameForms(full string) []string {
	forms := []string{CleanName(full)}
	if bracketedRe.MatchString(full) {
		colloquial := bracketedRe.ReplaceAllString(full, "$1")
		forms = append(forms, CleanName(colloquial))
	}
	uniq := forms[:0]
	seen := make(map[string]bool, len(forms))
	for _, f := range forms {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		uniq = append(uniq, f)
	}
	return uniq
}

// parseDate accepts the date spellings the codebook uses. The second
// return is false when the field is empty, which for termination dates
// means the seat is still held.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "1/2/2006", "01/02/2006", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
