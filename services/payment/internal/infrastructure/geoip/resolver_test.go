package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"), zap.NewNop())
	assert.Error(t, err)
}

func TestFromBytes_Garbage(t *testing.T) {
	_, err := FromBytes([]byte("not a maxmind database"), zap.NewNop())
	assert.Error(t, err)
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	assert.Equal(t, "", r.Country("1.1.1.1"))
	assert.NoError(t, r.Close())
}

func TestHasCountryData(t *testing.T) {
	assert.True(t, hasCountryData("GeoLite2-Country"))
	assert.True(t, hasCountryData("GeoIP2-City"))
	assert.False(t, hasCountryData("GeoLite2-ASN"))
	assert.False(t, hasCountryData("GeoIP2-Domain"))
}

func TestUnsupportedDatabaseError(t *testing.T) {
	err := UnsupportedDatabaseError{DatabaseType: "GeoLite2-ASN"}
	assert.Contains(t, err.Error(), "GeoLite2-ASN")
}
