package registry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scales-okn/jed/internal/types"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Paul Stevens", "john paul stevens"},
		{"José Cabranes", "jose cabranes"},
		{"C[hristian] Rozolis", "christian rozolis"},
		{"W.  H. Orrick", "w h orrick"},
		{"O' Brien", "o'brien"},
		{"Pam Beesly- Halpert", "pam beesly-halpert"},
		{"Judge Smith's", "judge smith"},
		{"Roger  H.   Lawson, Jr.", "roger h lawson jr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

const codebookCSV = `nid,jid,FullName,Last Name,First Name,Middle Name,Suffix,Court Name (1),Commission Date (1),Termination Date (1),Court Name (2),Commission Date (2),Termination Date (2),Court Name (3),Commission Date (3),Termination Date (3),Court Name (4),Commission Date (4),Termination Date (4),Court Name (5),Commission Date (5),Termination Date (5),Court Name (6),Commission Date (6),Termination Date (6)
100,1,C[hristian] John Rozolis,Rozolis,Christian,John,,ilnd,2004-05-10,,,,,,,,,,,,,,,,
200,2,Marvin Joseph Garbis,Garbis,Marvin,Joseph,,mdd,1989-08-01,2018-06-30,,,,,,,,,,,,,,,
300,3,Ruth Ann Smith,Smith,Ruth,Ann,,txnd,1980-01-15,1990-03-01,txsd,1990-03-02,2001-11-30,,,,,,,,,,,,
`

func loadTestCodebook(t *testing.T) []types.FJCJudge {
	t.Helper()
	judges, err := ReadFJC(strings.NewReader(codebookCSV), FJCOptions{})
	require.NoError(t, err)
	require.Len(t, judges, 3)
	return judges
}

func TestReadFJCNameForms(t *testing.T) {
	judges := loadTestCodebook(t)

	rozolis := judges[0]
	assert.Equal(t, "100", rozolis.NID)
	assert.Contains(t, rozolis.NameForms, "christian john rozolis")
	assert.Contains(t, rozolis.NameForms, "c john rozolis")
	assert.Equal(t, []string{"ilnd"}, rozolis.Courts)
	assert.False(t, rozolis.Terminated, "an open termination means a sitting judge")
}

func TestReadFJCCollapsesAppointments(t *testing.T) {
	judges := loadTestCodebook(t)

	smith := judges[2]
	assert.Equal(t, []string{"txnd", "txsd"}, smith.Courts)
	assert.Equal(t, 1980, smith.EarliestCommission.Year())
	assert.Equal(t, 2001, smith.LatestTermination.Year())
	assert.True(t, smith.Terminated)
}

func TestReadFJCDateWindow(t *testing.T) {
	low := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	judges, err := ReadFJC(strings.NewReader(codebookCSV), FJCOptions{Low: low})
	require.NoError(t, err)

	// Garbis terminated before the window only in his single seat, so he
	// survives; Smith loses her first appointment but keeps the second
	var smith types.FJCJudge
	for _, j := range judges {
		if j.NID == "300" {
			smith = j
		}
	}
	assert.Equal(t, []string{"txsd"}, smith.Courts)
}

func TestFJCSeedsShortestFormCanonical(t *testing.T) {
	seeds := FJCSeeds([]types.FJCJudge{{
		NID:       "100",
		FullName:  "C[hristian] John Rozolis",
		NameForms: []string{"christian john rozolis", "c john rozolis"},
		Courts:    []string{"ilnd"},
	}})
	require.Len(t, seeds["ilnd"], 1)
	seed := seeds["ilnd"][0]
	assert.Equal(t, "c john rozolis", seed.Name)
	assert.Equal(t, []string{"christian john rozolis"}, seed.Alts)
	assert.NoError(t, seed.Validate())
}

func TestFJCSeedsCuratedRepresentations(t *testing.T) {
	seeds := FJCSeeds([]types.FJCJudge{{
		NID:       "1394646",
		NameForms: []string{"leslie joyce abrams"},
		Courts:    []string{"gamd"},
	}})
	require.Len(t, seeds["gamd"], 1)
	assert.Contains(t, seeds["gamd"][0].Alts, "leslie abrams gardner")
}

func TestFJCSeedsDynastySuffixCanonical(t *testing.T) {
	seeds := FJCSeeds([]types.FJCJudge{
		{
			NID:       "1392721",
			NameForms: []string{"stephen n limbaugh"},
			Courts:    []string{"moed"},
		},
		{
			NID:       "1383911",
			NameForms: []string{"stephen n limbaugh"},
			Courts:    []string{"moed"},
		},
	})
	require.Len(t, seeds["moed"], 2)
	jr, sr := seeds["moed"][0], seeds["moed"][1]
	assert.Equal(t, "stephen nathaniel limbaugh jr", jr.Name)
	assert.Equal(t, "stephen nathaniel limbaugh", sr.Name)
	// the codebook form still resolves to either relative as an alternate
	assert.Contains(t, jr.Alts, "stephen n limbaugh")
	assert.Contains(t, sr.Alts, "stephen n limbaugh")
}

func TestFJCSeedsUnallocated(t *testing.T) {
	seeds := FJCSeeds([]types.FJCJudge{{
		NID:       "900",
		NameForms: []string{"some judge"},
	}})
	require.Len(t, seeds[Unallocated], 1)
	assert.Empty(t, seeds["ilnd"])
}

const rosterJudgesCSV = `JUDGE_ID,NAME
B001,Janet W. Baxter
M002,Paul O'Grady
`

const rosterPositionsCSV = `JUDGE_ID,COURT,POSITION
B001,ILNB,Bankruptcy Judge
B001,ILCB,Bankruptcy Judge
M002,ILND,Magistrate Judge
`

func TestReadRoster(t *testing.T) {
	judges, err := ReadRoster(
		strings.NewReader(rosterJudgesCSV),
		strings.NewReader(rosterPositionsCSV),
	)
	require.NoError(t, err)
	require.Len(t, judges, 2)

	baxter := judges[0]
	assert.Equal(t, "B001", baxter.RegistryID)
	assert.Equal(t, "bankruptcy", baxter.Kind)
	assert.Equal(t, []string{"ilnb", "ilcb"}, baxter.Courts)

	ogrady := judges[1]
	assert.Equal(t, "magistrate", ogrady.Kind)
}

func TestRosterSeeds(t *testing.T) {
	seeds := RosterSeeds([]types.RegistryJudge{{
		RegistryID: "M002",
		FullName:   "Paul O'Grady",
		Kind:       "magistrate",
		Courts:     []string{"ilnd"},
	}})
	require.Len(t, seeds["ilnd"], 1)
	seed := seeds["ilnd"][0]
	assert.Equal(t, "paul o'grady", seed.Name)
	assert.Equal(t, "M002", seed.RegistryID)
	assert.NoError(t, seed.Validate())
}

func TestDynastiesShareSurnames(t *testing.T) {
	// every dynasty member has a counterpart differing only by suffix
	for nid, name := range Dynasties {
		base := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(name, " jr"), " sr"), " iii")
		found := false
		for other, otherName := range Dynasties {
			if other == nid {
				continue
			}
			if strings.HasPrefix(otherName, base) {
				found = true
				break
			}
		}
		assert.True(t, found, "no dynasty counterpart for %s (%s)", nid, name)
	}
}
