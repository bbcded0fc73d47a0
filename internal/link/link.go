// Package link holds the shortened-link domain: the entity, the storage
// contract, and the resolution rules applied on the redirect path.
package link

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a code resolves to no live link. Expired
// links report the same error as codes that never existed.
var ErrNotFound = errors.New("link not found")

// ErrAliasTaken is returned when a requested custom alias is already in use.
var ErrAliasTaken = errors.New("alias already taken")

// Link is a shortening mapping. It is created by the management API and
// read-only to the redirect path; the short code never changes once set.
type Link struct {
	ID        string
	ShortCode string
	TargetURL string
	ExpiresAt *time.Time // nil means the link never expires
	CreatedAt time.Time
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// Repository is the storage contract the link domain needs.
type Repository interface {
	Save(ctx context.Context, link *Link) error

	// FindByIDOrCode matches a single inbound code against both the link id
	// and the short code in one lookup. Returns ErrNotFound when neither
	// matches.
	FindByIDOrCode(ctx context.Context, code string) (*Link, error)
}
