package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAsInteger(t *testing.T) {
	n, err := GetAsInteger("42")
	assert.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = GetAsInteger(" 7 ")
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = GetAsInteger(12.0)
	assert.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = GetAsInteger("12.5")
	assert.Error(t, err)

	_, err = GetAsInteger(nil)
	assert.Error(t, err)
}

func TestGetAsFloat(t *testing.T) {
	f, err := GetAsFloat("3.25")
	assert.NoError(t, err)
	assert.Equal(t, 3.25, f)

	f, err = GetAsFloat(5)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, f)

	_, err = GetAsFloat("not a number")
	assert.Error(t, err)
}

func TestGetAsString(t *testing.T) {
	s, err := GetAsString(1505)
	assert.NoError(t, err)
	assert.Equal(t, "1505", s)

	s, err = GetAsString(true)
	assert.NoError(t, err)
	assert.Equal(t, "true", s)
}

func TestFuzzyMatch(t *testing.T) {
	assert.Equal(t, 0, FuzzyMatch("Chiefs", "chiefs"))
	assert.True(t, IsFuzzyMatch("Kansas City Chiefs", "Kansas Cty Chiefs"))
	assert.Greater(t, FuzzyMatchScore("Chicago Bears", "Chicago Bears"), 0.99)
}
