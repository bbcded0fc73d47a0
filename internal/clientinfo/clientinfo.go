// Package clientinfo turns raw request attributes into a normalized
// client context for analytics. Extraction is pure: no I/O, no panics,
// best-effort values with explicit sentinels for anything unknown.
package clientinfo

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Unknown is the sentinel for any attribute that could not be parsed.
const Unknown = "Unknown"

// FallbackIP is used when no candidate header carries a client IP.
const FallbackIP = "0.0.0.0"

// Device classifies the client hardware into a closed set.
type Device string

const (
	DeviceDesktop Device = "Desktop"
	DeviceMobile  Device = "Mobile"
	DeviceTablet  Device = "Tablet"
	DeviceOther   Device = "Other"
)

// Header is a single candidate forwarded-IP header.
type Header struct {
	Name  string
	Value string
}

// Context is the normalized client attribute set. RawUserAgent keeps the
// unparsed string so stored events can be re-enriched if parsing improves.
type Context struct {
	Browser      string
	OS           string
	Device       Device
	IP           string
	RawUserAgent string
}

// Extract parses a raw user-agent string and an ordered list of candidate
// forwarded-IP headers into a Context. Candidates are checked in descending
// priority order; the first entry of the first non-empty header wins, since
// the first hop in a standard proxy chain is the originating client.
func Extract(rawUserAgent string, candidates []Header) Context {
	ua := useragent.Parse(rawUserAgent)

	return Context{
		Browser:      orUnknown(ua.Name),
		OS:           orUnknown(ua.OS),
		Device:       classifyDevice(ua),
		IP:           extractIP(candidates),
		RawUserAgent: rawUserAgent,
	}
}

func extractIP(candidates []Header) string {
	for _, h := range candidates {
		v := strings.TrimSpace(h.Value)
		if v == "" {
			continue
		}

		if idx := strings.Index(v, ","); idx != -1 {
			v = strings.TrimSpace(v[:idx])
		}

		if v != "" {
			return v
		}
	}

	return FallbackIP
}

func classifyDevice(ua useragent.UserAgent) Device {
	switch {
	case ua.Tablet:
		return DeviceTablet
	case ua.Mobile:
		return DeviceMobile
	case ua.Desktop:
		return DeviceDesktop
	default:
		return DeviceOther
	}
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}

	return s
}
