package services

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

var ErrInvalidIPAddress = errors.New("invalid IP address")

// GeoLocation is the coarse location resolved for a client IP
type GeoLocation struct {
	Country string
	City    string
}

// GeoResolver resolves client IP addresses to locations
type GeoResolver interface {
	Lookup(ipAddress string) (*GeoLocation, error)
	Close() error
}

// GeoIPResolver resolves locations from a MaxMind GeoLite2/GeoIP2 City database
type GeoIPResolver struct {
	reader *geoip2.Reader
}

// NewGeoIPResolver opens the City database at path
func NewGeoIPResolver(path string) (*GeoIPResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database %s: %w", path, err)
	}
	return &GeoIPResolver{reader: reader}, nil
}

// Lookup returns the ISO country code and English city name of ipAddress.
// Fields the database does not know stay empty.
func (r *GeoIPResolver) Lookup(ipAddress string) (*GeoLocation, error) {
	ip := net.ParseIP(strings.TrimSpace(ipAddress))
	if ip == nil {
		return nil, ErrInvalidIPAddress
	}

	record, err := r.reader.City(ip)
	if err != nil {
		return nil, fmt.Errorf("geoip lookup failed: %w", err)
	}

	loc := &GeoLocation{
		Country: record.Country.IsoCode,
	}
	if loc.Country == "" {
		loc.Country = record.Country.Names["en"]
	}
	if name, ok := record.City.Names["en"]; ok {
		loc.City = name
	}
	return loc, nil
}

// Close releases the database
func (r *GeoIPResolver) Close() error {
	return r.reader.Close()
}

// NoopGeoResolver is used when geo enrichment is disabled
type NoopGeoResolver struct{}

// NewNoopGeoResolver creates a resolver that never resolves anything
func NewNoopGeoResolver() GeoResolver {
	return NoopGeoResolver{}
}

func (NoopGeoResolver) Lookup(string) (*GeoLocation, error) { return nil, nil }

func (NoopGeoResolver) Close() error { return nil }
