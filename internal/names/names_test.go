package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBasic(t *testing.T) {
	f := Build("John Paul Stevens")
	assert.Equal(t, []string{"john", "paul", "stevens"}, f.Base)
	assert.Equal(t, "", f.Suffix)
	assert.Equal(t, "stevens", f.Anchor)
	assert.Equal(t, "jps", f.Initials)
	assert.Equal(t, "jps", f.InitialsWithSuffix)
	assert.Equal(t, 3, f.TokenCount())
}

func TestBuildSuffix(t *testing.T) {
	f := Build("fred biery jr")
	assert.Equal(t, "jr", f.Suffix)
	assert.Equal(t, "biery", f.Anchor)
	assert.Equal(t, "fb", f.Initials)
	assert.Equal(t, "fbjr", f.InitialsWithSuffix)
	assert.Equal(t, 2, f.TokenCount())

	// suffix rides along on every variant
	for _, v := range f.Plain[AbbrevKey{true, false}] {
		assert.Equal(t, "jr", v[len(v)-1])
	}
}

func TestSuffixAloneIsAnchor(t *testing.T) {
	// a bare roman numeral is a whole name, not a suffix
	f := Build("v")
	assert.Equal(t, "", f.Suffix)
	assert.Equal(t, "v", f.Anchor)
}

func TestAbbreviatedVariants(t *testing.T) {
	f := Build("john paul stevens")

	plain := f.Plain[AbbrevKey{First: true, Middle: true}]
	require.NotEmpty(t, plain)
	assert.Equal(t, []string{"j", "p", "stevens"}, plain[0])

	firstOnly := f.Plain[AbbrevKey{First: true}]
	assert.Equal(t, []string{"j", "paul", "stevens"}, firstOnly[0])
}

func TestHyphenVariants(t *testing.T) {
	f := Build("mary smith-jones")
	variants := f.Plain[AbbrevKey{}]

	var fused, split bool
	for _, v := range variants {
		if len(v) == 2 && v[1] == "smithjones" {
			fused = true
		}
		if len(v) == 3 && v[1] == "smith" && v[2] == "jones" {
			split = true
		}
	}
	assert.True(t, fused, "expected fused hyphen variant")
	assert.True(t, split, "expected split hyphen variant")
}

func TestNicknameVariants(t *testing.T) {
	f := Build("william smith")
	nick := f.Variants(PoolNicknames, AbbrevKey{})

	var sawChip, sawPlain bool
	for _, v := range nick {
		if v[0] == "chip" {
			sawChip = true
		}
		if v[0] == "william" {
			sawPlain = true
		}
	}
	assert.True(t, sawChip, "nickname pool should contain chip smith")
	assert.True(t, sawPlain, "nickname pool should keep the plain form")
}

func TestUnifiedVariants(t *testing.T) {
	a := Build("katherine forrest")
	b := Build("catherine forrest")
	assert.Equal(t,
		a.Variants(PoolUnified, AbbrevKey{})[0],
		b.Variants(PoolUnified, AbbrevKey{})[0])
}

func TestIsSuffix(t *testing.T) {
	for _, s := range []string{"jr", "sr", "iii", "II", "senior"} {
		assert.True(t, IsSuffix(s), s)
	}
	assert.False(t, IsSuffix("smith"))
}
