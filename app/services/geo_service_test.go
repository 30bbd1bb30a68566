package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopGeoResolver(t *testing.T) {
	resolver := NewNoopGeoResolver()

	loc, err := resolver.Lookup("81.0.0.1")
	assert.NoError(t, err)
	assert.Nil(t, loc)
	assert.NoError(t, resolver.Close())
}

func TestNewGeoIPResolverMissingDatabase(t *testing.T) {
	resolver, err := NewGeoIPResolver(filepath.Join(t.TempDir(), "GeoLite2-City.mmdb"))

	require.Error(t, err)
	assert.Nil(t, resolver)
}
