package generic

import (
	"sort"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	assert := assert_.New(t)

	s := NewSet[string]()
	assert.Equal(0, s.Count())
	assert.False(s.Contains("www.youtube.com"))
	assert.True(s.Add("www.youtube.com"))
	assert.Equal(1, s.Count())
	assert.True(s.Contains("www.youtube.com"))
	assert.False(s.Add("www.youtube.com"))
	assert.Equal(1, s.Count())
	assert.True(s.Remove("www.youtube.com"))
	assert.Equal(0, s.Count())
	assert.False(s.Remove("www.youtube.com"))

	s2 := NewSet("si", "feature", "pp")
	assert.True(s2.Contains("si"))
	assert.True(s2.Contains("si", "pp"))
	assert.False(s2.Contains("si", "v"))

	s3 := s2.Clone()
	assert.True(s3.Add("utm_source"))
	assert.Equal(4, s3.Count())
	assert.Equal(3, s2.Count())

	items := s2.ToSlice()
	sort.Strings(items)
	assert.Equal([]string{"feature", "pp", "si"}, items)

	s3.Clear()
	assert.Equal(0, s3.Count())
	assert.False(s3.Contains("si"))
}
