// Package geo resolves client addresses to country codes using a local
// MaxMind database. The resolver is optional; when no database is
// configured, click events simply carry no geolocation.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Resolver maps IP addresses to ISO 3166-1 alpha-2 country codes.
type Resolver struct {
	reader *geoip2.Reader
}

// Open loads a GeoLite2/GeoIP2 database from path.
func Open(path string) (*Resolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Country returns the country code for addr, or "" when the address does
// not parse or has no match. Lookup failures are not errors; geolocation is
// strictly best-effort.
func (r *Resolver) Country(addr string) string {
	ip := net.ParseIP(addr)
	if ip == nil {
		return ""
	}

	record, err := r.reader.Country(ip)
	if err != nil {
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the underlying database.
func (r *Resolver) Close() error {
	return r.reader.Close()
}
