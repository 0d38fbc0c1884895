package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	t.Run("null is falsy", func(t *testing.T) {
		assert.False(t, Null.Truthy())
	})
	t.Run("zero int is falsy", func(t *testing.T) {
		assert.False(t, Int(0).Truthy())
	})
	t.Run("empty string is falsy", func(t *testing.T) {
		assert.False(t, String("").Truthy())
	})
	t.Run("non-empty string is truthy", func(t *testing.T) {
		assert.True(t, String("x").Truthy())
	})
	t.Run("non-zero float is truthy", func(t *testing.T) {
		assert.True(t, Float(0.1).Truthy())
	})
}

func TestValueString(t *testing.T) {
	t.Run("integer renders without trailing zero", func(t *testing.T) {
		assert.Equal(t, "1024", Int(1024).String())
	})
	t.Run("null renders empty", func(t *testing.T) {
		assert.Equal(t, "", Null.String())
	})
	t.Run("bool renders as true/false", func(t *testing.T) {
		assert.Equal(t, "true", Bool(true).String())
	})
}

func TestFromAny(t *testing.T) {
	t.Run("nil becomes Null", func(t *testing.T) {
		assert.True(t, FromAny(nil).IsNull())
	})
	t.Run("int64 round-trips", func(t *testing.T) {
		v := FromAny(int64(42))
		i, ok := v.Int()
		assert.True(t, ok)
		assert.Equal(t, int64(42), i)
	})
	t.Run("slice becomes sequence", func(t *testing.T) {
		v := FromAny([]any{1, 2, 3})
		seq, ok := v.Sequence()
		assert.True(t, ok)
		assert.Len(t, seq, 3)
	})
}
