// Package geo resolves client IPs to coarse locations. Lookup is best
// effort: any failure yields an empty Location rather than an error, since
// geo attributes are optional enrichment on click events.
package geo

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location is a coarse geographic position. Zero values mean unknown.
type Location struct {
	Country string
	Region  string
	City    string
}

// Locator maps an IP address to a Location.
type Locator interface {
	Locate(ip string) Location
}

// MaxMindLocator reads locations from a MaxMind GeoLite2 City database.
type MaxMindLocator struct {
	reader *geoip2.Reader
}

// Open opens the MaxMind database at the given path.
func Open(path string) (*MaxMindLocator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}

	return &MaxMindLocator{reader: reader}, nil
}

// Locate resolves the IP, returning an empty Location for unparseable
// addresses or database misses.
func (m *MaxMindLocator) Locate(ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}
	}

	record, err := m.reader.City(parsed)
	if err != nil {
		return Location{}
	}

	loc := Location{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
	}

	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}

	return loc
}

// Close releases the underlying database.
func (m *MaxMindLocator) Close() error {
	return m.reader.Close()
}

// Noop is a Locator that knows nothing. Used when no database is configured.
type Noop struct{}

func (Noop) Locate(string) Location {
	return Location{}
}
