package fuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("john smith", "john smith"))
	assert.Equal(t, 100, Ratio("", ""))
	assert.Equal(t, 0, Ratio("", "abcd"))

	// single-character typo stays high
	assert.GreaterOrEqual(t, Ratio("gelpi", "gelp"), 85)
	// unrelated names score low
	assert.Less(t, Ratio("washington", "oetken"), 70)
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"sonia sotomayor", "s sotomayor"},
		{"lewis a", "wilma a lewis"},
		{"a", "ab"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "pair %v", p)
	}
}

func TestPartialRatio(t *testing.T) {
	// substring containment scores 100
	assert.Equal(t, 100, PartialRatio("smith", "john smith"))
	assert.Equal(t, 100, PartialRatio("john smith", "smith"))
	assert.Equal(t, 100, PartialRatio("", ""))
	assert.Equal(t, 0, PartialRatio("", "x"))

	// near-substring still beats the plain ratio
	assert.Greater(t, PartialRatio("smyth", "john smith"), Ratio("smyth", "john smith"))
}

func TestTokenSortRatio(t *testing.T) {
	// word order is ignored
	assert.Equal(t, 100, TokenSortRatio("smith john", "john smith"))
	assert.Less(t, TokenSortRatio("mark a roberts", "robert a marks"), 100)
}

func TestTokenSetRatio(t *testing.T) {
	// shared token core dominates
	assert.Equal(t, 100, TokenSetRatio("john smith", "john smith jr"))
	assert.Less(t, TokenSetRatio("john smith", "jane doe"), 75)
}
