package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/scales-okn/jed/internal/types"
)

// LoadRoster reads the bankruptcy/magistrate roster: a judges file with
// one row per judge and a positions file with one row per seat held.
// Judges collapse to one entry carrying every court served.
func LoadRoster(judgesPath, positionsPath string) ([]types.RegistryJudge, error) {
	jf, err := os.Open(judgesPath)
	if err != nil {
		return nil, fmt.Errorf("opening roster judges: %w", err)
	}
	defer jf.Close()
	pf, err := os.Open(positionsPath)
	if err != nil {
		return nil, fmt.Errorf("opening roster positions: %w", err)
	}
	defer pf.Close()

	judges, err := ReadRoster(jf, pf)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	return judges, nil
}

// ReadRoster parses roster CSV data from the two readers.
func ReadRoster(judgesR, positionsR io.Reader) ([]types.RegistryJudge, error) {
	byID := make(map[string]*types.RegistryJudge)
	var order []string

	err := eachRow(judgesR, func(col map[string]int, rec []string) error {
		id := firstField(rec, col, "JUDGE_ID", "judge_id")
		name := firstField(rec, col, "NAME", "FULL_NAME", "name", "full_name")
		if id == "" || name == "" {
			return nil
		}
		if _, dup := byID[id]; dup {
			return nil
		}
		byID[id] = &types.RegistryJudge{RegistryID: id, FullName: name}
		order = append(order, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("judges file: %w", err)
	}

	err = eachRow(positionsR, func(col map[string]int, rec []string) error {
		id := firstField(rec, col, "JUDGE_ID", "judge_id")
		j := byID[id]
		if j == nil {
			return nil
		}
		if court := strings.ToLower(firstField(rec, col, "COURT", "court")); court != "" {
			j.Courts = appendUnique(j.Courts, court)
		}
		if j.Kind == "" {
			j.Kind = positionKind(firstField(rec, col, "POSITION", "TITLE", "position", "title"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("positions file: %w", err)
	}

	out := make([]types.RegistryJudge, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].RegistryID < out[b].RegistryID })
	return out, nil
}

// positionKind classifies a seat title.
func positionKind(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "bankruptcy"):
		return "bankruptcy"
	case strings.Contains(t, "magistrate"):
		return "magistrate"
	default:
		return ""
	}
}

// eachRow streams a headered CSV, handing each record to fn with the
// header column index.
func eachRow(r io.Reader, fn func(col map[string]int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		line++
		if err := fn(col, rec); err != nil {
			return err
		}
	}
}

func firstField(rec []string, col map[string]int, names ...string) string {
	for _, n := range names {
		if v := field(rec, col, n); v != "" {
			return v
		}
	}
	return ""
}
