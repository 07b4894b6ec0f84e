package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCaseInsensitive(t *testing.T) {
	c := NewCatalog(DefaultStyles())

	for _, text := range []string{"Candy", "candy", "CANDY", "  candy  "} {
		s, ok := c.Resolve(text)
		require.True(t, ok, "expected %q to resolve", text)
		assert.Equal(t, "Candy", s.Name)
		assert.Equal(t, "candy", s.ID)
	}
}

func TestResolveExactOnly(t *testing.T) {
	c := NewCatalog(DefaultStyles())

	for _, text := range []string{"cand", "candyy", "rain", "princess", "", "  "} {
		_, ok := c.Resolve(text)
		assert.False(t, ok, "expected %q not to resolve", text)
	}
}

func TestResolveMultiWord(t *testing.T) {
	c := NewCatalog(DefaultStyles())

	s, ok := c.Resolve("rain princess")
	require.True(t, ok)
	assert.Equal(t, "rain_princess", s.ID)
}

func TestNamesSorted(t *testing.T) {
	c := NewCatalog(map[string]string{
		"Udnie":  "udnie",
		"Candy":  "candy",
		"Mosaic": "mosaic",
	})

	assert.Equal(t, []string{"Candy", "Mosaic", "Udnie"}, c.Names())
}

func TestNewCatalogSkipsEmptyEntries(t *testing.T) {
	c := NewCatalog(map[string]string{
		"Candy": "candy",
		"":      "ghost",
		"Void":  "  ",
	})

	assert.Equal(t, 1, c.Len())
	_, ok := c.Resolve("void")
	assert.False(t, ok)
}
