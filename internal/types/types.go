// Package types defines the domain types shared across the resolution
// pipeline: mentions extracted from dockets, catalog entries for resolved
// judges, and the prefix-category evidence used for labeling.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Sentinel entity IDs for mentions that could not be resolved.
const (
	// EntityInconclusive marks a mention denied a stable entity ID.
	EntityInconclusive = "Inconclusive"
	// EntityAmbiguous marks a mention tied to several plausible entities.
	EntityAmbiguous = "Ambiguous"
)

// EntityIDFormat is the printf format for stable entity IDs.
const EntityIDFormat = "SJ%06d"

// PrefixCategory classifies the text immediately preceding a mention.
type PrefixCategory string

const (
	CategoryBankruptcyJudge  PrefixCategory = "Bankruptcy_Judge"
	CategoryCircuitAppeals   PrefixCategory = "Circuit_Appeals"
	CategoryDistrictJudge    PrefixCategory = "District_Judge"
	CategoryMagistrateJudge  PrefixCategory = "Magistrate_Judge"
	CategoryNondescriptJudge PrefixCategory = "Nondescript_Judge"
	CategoryJudicialActor    PrefixCategory = "Judicial_Actor"
	CategoryNoKeywords       PrefixCategory = "No_Keywords"
	CategoryAssignedJudge    PrefixCategory = "Assigned_Judge"
	CategoryReferredJudge    PrefixCategory = "Referred_Judge"
)

// PrefixCategories lists every valid category.
var PrefixCategories = []PrefixCategory{
	CategoryBankruptcyJudge, CategoryCircuitAppeals, CategoryDistrictJudge,
	CategoryMagistrateJudge, CategoryNondescriptJudge, CategoryJudicialActor,
	CategoryNoKeywords, CategoryAssignedJudge, CategoryReferredJudge,
}

// IsValid reports whether the category is one of the known values.
func (c PrefixCategory) IsValid() bool {
	for _, v := range PrefixCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Judgey reports whether the category indicates judge-like pretext.
func (c PrefixCategory) Judgey() bool {
	switch c {
	case CategoryNoKeywords, CategoryJudicialActor:
		return false
	default:
		return c.IsValid()
	}
}

// Mention is one judge-name appearance at an indexed location on a case
// docket. Mentions arrive pre-extracted and pre-cleaned.
type Mention struct {
	// ExtractionMethod records how the upstream extractor found the span.
	ExtractionMethod string `json:"entity_extraction_method"`
	// DocketSource is where on the docket the mention appeared
	// (line_entry, case_header, ...). Header sources carry more weight
	// during labeling.
	DocketSource string `json:"docket_source"`
	JudgeEnum    *int   `json:"judge_enum"`
	PartyEnum    *int   `json:"party_enum"`
	PacerID      *int   `json:"pacer_id"`
	DocketIndex  *int   `json:"docket_index"`
	// CaseID is the unique case identifier, e.g. "ilnd;;3:16-cr-00001".
	CaseID string `json:"ucid"`
	CID    string `json:"cid"`
	Court  string `json:"court"`
	Year   int    `json:"year"`
	Date   string `json:"entry_or_filing_date"`
	// OriginalText is the raw docket text the mention was cut from.
	OriginalText string `json:"original_text"`
	// CleanedName is the normalized mention used for matching.
	CleanedName string `json:"extracted_entity"`
	// Category is the prefix category of the surrounding text.
	Category        PrefixCategory `json:"prefix_categories"`
	TransferredFlag bool           `json:"transferred_flag"`
	SpanStart       int            `json:"full_span_start"`
	SpanEnd         int            `json:"full_span_end"`
	EntitySpanStart int            `json:"entity_span_start"`
	EntitySpanEnd   int            `json:"entity_span_end"`
	// ParentName is the representative name the mention resolved to.
	ParentName string `json:"parent_entity"`
	// EntityID is the stable entity ID, or a sentinel value.
	EntityID string `json:"sjid"`
	// AmbiguousEntityIDs lists candidate entity IDs when EntityID is the
	// ambiguous sentinel.
	AmbiguousEntityIDs []string `json:"ambiguous_sjids,omitempty"`
}

// Validate checks that the mention has the fields resolution depends on.
func (m *Mention) Validate() error {
	if strings.TrimSpace(m.CleanedName) == "" {
		return fmt.Errorf("mention missing cleaned name (case=%s)", m.CaseID)
	}
	if m.CaseID == "" {
		return fmt.Errorf("mention missing case ID (name=%q)", m.CleanedName)
	}
	if !strings.Contains(m.CaseID, ";;") {
		return fmt.Errorf("malformed case ID %q: expected court;;docket form", m.CaseID)
	}
	if m.Court == "" {
		return fmt.Errorf("mention missing court (case=%s)", m.CaseID)
	}
	if m.Category != "" && !m.Category.IsValid() {
		return fmt.Errorf("unknown prefix category %q (case=%s)", m.Category, m.CaseID)
	}
	return nil
}

// IsHeader reports whether the mention came from case-header data rather
// than a docket line entry.
func (m *Mention) IsHeader() bool {
	return m.DocketSource != "line_entry"
}

// CaseYearDigits returns the two-digit filing year embedded in the case ID,
// used to shard output files, e.g. "ilnd;;3:16-cr-00001" -> "16".
func (m *Mention) CaseYearDigits() (string, error) {
	parts := strings.SplitN(m.CaseID, ";;", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed case ID %q", m.CaseID)
	}
	sub := strings.SplitN(parts[1], ":", 2)
	if len(sub) != 2 || len(sub[1]) < 2 {
		return "", fmt.Errorf("malformed case ID %q", m.CaseID)
	}
	return sub[1][:2], nil
}

// CatalogEntry is one resolved judge entity in the output catalog.
type CatalogEntry struct {
	// Name is the canonical lowercase representative name.
	Name string `json:"name"`
	// PresentableName is the display capitalization of Name.
	PresentableName string `json:"presentable_name"`
	// EntityID is the stable monotonic ID assigned at catalog build.
	EntityID string `json:"sjid"`
	// Label is the role guess produced by the labeling decision tree.
	Label string `json:"judge_label"`
	// HeadCaseCount is the number of distinct cases with header mentions.
	HeadCaseCount int `json:"head_ucids"`
	// TotalCaseCount is the number of distinct cases overall.
	TotalCaseCount int  `json:"tot_ucids"`
	IsFJC          bool `json:"is_fjc"`
	IsRegistry     bool `json:"is_ba_mag"`
	// FJCID is the FJC codebook NID when IsFJC is set.
	FJCID string `json:"nid,omitempty"`
	// RegistryID is the roster ID when IsRegistry is set.
	RegistryID string `json:"ba_mag_id,omitempty"`
}

// Validate checks catalog entry consistency.
func (e *CatalogEntry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("catalog entry missing name (id=%s)", e.EntityID)
	}
	if e.EntityID == "" {
		return fmt.Errorf("catalog entry %q missing entity ID", e.Name)
	}
	if e.EntityID == EntityAmbiguous {
		return fmt.Errorf("catalog entry %q carries the ambiguous sentinel", e.Name)
	}
	if e.IsFJC && e.FJCID == "" {
		return fmt.Errorf("catalog entry %q flagged FJC without an NID", e.Name)
	}
	if e.IsRegistry && e.RegistryID == "" {
		return fmt.Errorf("catalog entry %q flagged registry without a roster ID", e.Name)
	}
	if e.TotalCaseCount < e.HeadCaseCount {
		return fmt.Errorf("catalog entry %q: header case count %d exceeds total %d",
			e.Name, e.HeadCaseCount, e.TotalCaseCount)
	}
	return nil
}

// FJCJudge is one Article III judge from the FJC codebook, reduced to the
// fields resolution needs. Multiple appointments collapse to one row.
type FJCJudge struct {
	NID            string `json:"nid"`
	FullName       string `json:"full_name"`
	SimplifiedName string `json:"simplified_name"`
	// NameForms are the lowercased name variants the codebook yields for
	// this judge (full, no-middle, initialed middle, curated extras). The
	// shortest form is the canonical seed name; the rest ride along as
	// additional representations.
	NameForms          []string  `json:"name_forms,omitempty"`
	Courts             []string  `json:"courts,omitempty"`
	EarliestCommission time.Time `json:"earliest_commission"`
	LatestTermination  time.Time `json:"latest_termination"`
	// Terminated is false when the judge still holds the seat; sitting
	// judges are never dormant.
	Terminated bool `json:"terminated"`
}

// RegistryJudge is one bankruptcy or magistrate judge from the roster.
type RegistryJudge struct {
	RegistryID string `json:"ba_mag_id"`
	FullName   string `json:"full_name"`
	// Kind is "bankruptcy" or "magistrate".
	Kind   string   `json:"kind"`
	Courts []string `json:"courts"`
}

// RunSummary is one resolution run's bookkeeping row.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Mentions    int       `json:"mentions"`
	Entities    int       `json:"entities"`
	Tossed      int       `json:"tossed"`
	Merges      int       `json:"merges"`
}
