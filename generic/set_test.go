package generic

import (
	"errors"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	assert := assert_.New(t)

	s := NewSet[string]()
	assert.False(s.Contains("youtu.be"))
	assert.True(s.Add("youtu.be"))
	assert.False(s.Add("youtu.be"))
	assert.True(s.Contains("youtu.be"))
	// Contains with nothing to check is vacuously true
	assert.True(s.Contains())

	s2 := NewSet(3, 1, 2, 1)
	assert.True(s2.Contains(1, 2, 3))
	assert.False(s2.Contains(1, 4))
}

func TestResult(t *testing.T) {
	assert := assert_.New(t)

	ok := NewResult("abc123", nil)
	assert.False(ok.IsErr())
	v, err := ok.Parts()
	assert.Equal("abc123", v)
	assert.NoError(err)
	assert.Equal("abc123", ok.Expect("expected a value"))

	failed := NewResult("", errors.New("boom"))
	assert.True(failed.IsErr())
	assert.Panics(func() { failed.Expect("expected a value") })
	assert.Equal("abc123", Unwrap("abc123", nil))
	assert.Panics(func() { Unwrap_(errors.New("boom")) })
	assert.NotPanics(func() { Unwrap_(nil) })
}
