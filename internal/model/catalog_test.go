package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Gaming Laptops":       "gaming-laptops",
		"  Phones & Tablets  ": "phones-tablets",
		"Wi-Fi 6 Routers!":     "wi-fi-6-routers",
		"already-a-slug":       "already-a-slug",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSpecificationsScan(t *testing.T) {
	var s Specifications
	require.NoError(t, s.Scan([]byte(`{"ram":"16GB","ports":3}`)))
	assert.Equal(t, "16GB", s["ram"])
	assert.EqualValues(t, 3, s["ports"])

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))

	v, err := Specifications(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}
