package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowPreservesInsertionOrder(t *testing.T) {
	r := NewRow()
	r.Set("class", String("A"))
	r.Set("shallow", Int(10))
	r.Set("id", Int(1))

	assert.Equal(t, []string{"class", "shallow", "id"}, r.Keys())

	r.Set("shallow", Int(20))
	assert.Equal(t, []string{"class", "shallow", "id"}, r.Keys(), "overwrite keeps original position")

	v, ok := r.Get("shallow")
	assert.True(t, ok)
	i, _ := v.Int()
	assert.Equal(t, int64(20), i)
}

func TestRowGetMissing(t *testing.T) {
	r := NewRow()
	v, ok := r.Get("nope")
	assert.False(t, ok)
	assert.True(t, v.IsNull())
}

func TestRowClone(t *testing.T) {
	r := NewRow()
	r.Set("a", Int(1))
	c := r.Clone()
	c.Set("a", Int(2))

	av, _ := r.Get("a")
	cv, _ := c.Get("a")
	ai, _ := av.Int()
	ci, _ := cv.Int()
	assert.Equal(t, int64(1), ai)
	assert.Equal(t, int64(2), ci)
}

func TestExtractPath(t *testing.T) {
	inner := NewRow()
	inner.Set("y", Int(7))
	outer := NewRow()
	outer.Set("x", FromRow(inner))

	v := Extract(outer, []string{"x", "y"})
	i, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)
}

func TestExtractMissingSegmentYieldsNull(t *testing.T) {
	outer := NewRow()
	outer.Set("x", Int(1))

	v := Extract(outer, []string{"x", "y"})
	assert.True(t, v.IsNull())

	v = Extract(outer, []string{"nope"})
	assert.True(t, v.IsNull())
}

func TestExtractIntoSequence(t *testing.T) {
	outer := NewRow()
	outer.Set("xs", Seq([]Value{Int(1), Int(2), Int(3)}))

	v := Extract(outer, []string{"xs", "1"})
	i, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)
}
