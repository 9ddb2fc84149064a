package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentionValidate(t *testing.T) {
	tests := []struct {
		name        string
		mention     Mention
		expectError bool
	}{
		{
			name: "valid line entry mention",
			mention: Mention{
				CleanedName: "john paul stevens",
				CaseID:      "ilnd;;3:16-cr-00001",
				Court:       "ilnd",
				Category:    CategoryDistrictJudge,
			},
			expectError: false,
		},
		{
			name: "missing cleaned name",
			mention: Mention{
				CaseID: "ilnd;;3:16-cr-00001",
				Court:  "ilnd",
			},
			expectError: true,
		},
		{
			name: "malformed case id",
			mention: Mention{
				CleanedName: "john paul stevens",
				CaseID:      "3:16-cr-00001",
				Court:       "ilnd",
			},
			expectError: true,
		},
		{
			name: "unknown prefix category",
			mention: Mention{
				CleanedName: "john paul stevens",
				CaseID:      "ilnd;;3:16-cr-00001",
				Court:       "ilnd",
				Category:    "Grand_Vizier",
			},
			expectError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mention.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCaseYearDigits(t *testing.T) {
	m := Mention{CaseID: "ilnd;;3:16-cr-00001"}
	year, err := m.CaseYearDigits()
	assert.NoError(t, err)
	assert.Equal(t, "16", year)

	m = Mention{CaseID: "garbage"}
	_, err = m.CaseYearDigits()
	assert.Error(t, err)
}

func TestIsHeader(t *testing.T) {
	assert.False(t, (&Mention{DocketSource: "line_entry"}).IsHeader())
	assert.True(t, (&Mention{DocketSource: "case_header"}).IsHeader())
}

func TestCatalogEntryValidate(t *testing.T) {
	entry := CatalogEntry{
		Name:            "john paul stevens",
		PresentableName: "John Paul Stevens",
		EntityID:        "SJ000001",
		Label:           "FJC Judge",
		HeadCaseCount:   4,
		TotalCaseCount:  10,
		IsFJC:           true,
		FJCID:           "1394646",
	}
	assert.NoError(t, entry.Validate())

	bad := entry
	bad.FJCID = ""
	assert.Error(t, bad.Validate())

	bad = entry
	bad.HeadCaseCount = 11
	assert.Error(t, bad.Validate())

	bad = entry
	bad.EntityID = EntityAmbiguous
	assert.Error(t, bad.Validate())
}

func TestCategoryJudgey(t *testing.T) {
	assert.True(t, CategoryDistrictJudge.Judgey())
	assert.True(t, CategoryNondescriptJudge.Judgey())
	assert.False(t, CategoryNoKeywords.Judgey())
	assert.False(t, CategoryJudicialActor.Judgey())
	assert.False(t, PrefixCategory("bogus").Judgey())
}
