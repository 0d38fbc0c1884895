package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNumericPromotion(t *testing.T) {
	assert.Equal(t, 0, Compare(Int(2), Float(2.0)))
	assert.Equal(t, -1, Compare(Int(1), Float(2.0)))
	assert.Equal(t, 1, Compare(Float(3.5), Int(2)))
}

func TestCompareStringsLexicographic(t *testing.T) {
	assert.Equal(t, -1, Compare(String("a"), String("b")))
	assert.Equal(t, 0, Compare(String("a"), String("a")))
}

func TestCompareNulls(t *testing.T) {
	assert.Equal(t, 0, Compare(Null, Null))
	assert.Equal(t, -1, Compare(Null, Int(1)))
	assert.Equal(t, 1, Compare(Int(1), Null))
}

func TestEqualAndNotEqualWithNull(t *testing.T) {
	assert.True(t, Equal(Null, Null))
	assert.False(t, Equal(Null, Int(0)))
	assert.True(t, NotEqual(Null, Int(0)))
	assert.False(t, NotEqual(Null, Null))
}

func TestLessNullsLast(t *testing.T) {
	vals := []Value{Int(3), Null, Int(1)}
	// simple bubble to sanity check the comparator's contract
	swapped := true
	for swapped {
		swapped = false
		for i := 0; i+1 < len(vals); i++ {
			if !LessNullsLast(vals[i], vals[i+1]) && LessNullsLast(vals[i+1], vals[i]) {
				vals[i], vals[i+1] = vals[i+1], vals[i]
				swapped = true
			}
		}
	}
	assert.True(t, vals[len(vals)-1].IsNull())
}

func TestMatchesRegexAnchored(t *testing.T) {
	re, err := CompileAnchoredRegex(".*String.*")
	assert.NoError(t, err)
	assert.True(t, MatchesRegex(String("java.lang.String"), re))
	assert.True(t, MatchesRegex(String("java.lang.StringBuilder"), re))
	assert.False(t, MatchesRegex(String("java.util.HashMap"), re))
}
