package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "owner@example.com", Normalize("  Owner@Example.COM "))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "strasse@example.com", Normalize("STRASSE@example.com"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Jane.Doe@Example.com", " jane.doe@example.com"))
	assert.False(t, Equal("", ""))
	assert.False(t, Equal("a@example.com", "b@example.com"))
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("jane.doe@example.com")
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Doe", last)

	first, last = SplitName("ops@example.com")
	assert.Equal(t, "Ops", first)
	assert.Equal(t, "", last)

	first, last = SplitName("@example.com")
	assert.Equal(t, "", first)
	assert.Equal(t, "", last)
}
