package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
	"go.uber.org/zap"
)

// countryRecord is the part of a GeoIP2/GeoLite2 record the resolver reads
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

// UnsupportedDatabaseError is returned for databases without country data
type UnsupportedDatabaseError struct {
	DatabaseType string
}

func (e UnsupportedDatabaseError) Error() string {
	return fmt.Sprintf("geoip: %q database has no country data", e.DatabaseType)
}

// Resolver maps client IPs to ISO 3166-1 alpha-2 country codes
type Resolver struct {
	reader *maxminddb.Reader
	logger *zap.Logger
}

// Open memory-maps the database at path. Close releases it.
func Open(path string, logger *zap.Logger) (*Resolver, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return newResolver(reader, logger)
}

// FromBytes reads a database held in memory. bytes must not change afterwards.
func FromBytes(bytes []byte, logger *zap.Logger) (*Resolver, error) {
	reader, err := maxminddb.FromBytes(bytes)
	if err != nil {
		return nil, err
	}
	return newResolver(reader, logger)
}

func newResolver(reader *maxminddb.Reader, logger *zap.Logger) (*Resolver, error) {
	if !hasCountryData(reader.Metadata.DatabaseType) {
		_ = reader.Close()
		return nil, UnsupportedDatabaseError{reader.Metadata.DatabaseType}
	}
	return &Resolver{reader: reader, logger: logger}, nil
}

func hasCountryData(databaseType string) bool {
	switch databaseType {
	case "DBIP-City-Lite",
		"DBIP-Country-Lite",
		"DBIP-Country",
		"DBIP-Location (compat=City)",
		"GeoLite2-City",
		"GeoIP2-City",
		"GeoIP2-City-Africa",
		"GeoIP2-City-Asia-Pacific",
		"GeoIP2-City-Europe",
		"GeoIP2-City-North-America",
		"GeoIP2-City-South-America",
		"GeoIP2-Precision-City",
		"GeoLite2-Country",
		"GeoIP2-Country",
		"DBIP-ISP (compat=Enterprise)",
		"DBIP-Location-ISP (compat=Enterprise)",
		"GeoIP2-Enterprise":
		return true
	default:
		return false
	}
}

// Country returns the country of ip, or "" when unknown. A nil resolver
// knows no countries.
func (r *Resolver) Country(ip string) string {
	if r == nil {
		return ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	var record countryRecord
	if err := r.reader.Lookup(parsed, &record); err != nil {
		r.logger.Debug("GeoIP lookup failed",
			zap.String("ip", ip),
			zap.Error(err))
		return ""
	}

	if record.Country.ISOCode != "" {
		return record.Country.ISOCode
	}
	return record.RegisteredCountry.ISOCode
}

func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	return r.reader.Close()
}
