package link

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Resolved is the outcome of a successful resolution: everything the
// redirect path needs, nothing more.
type Resolved struct {
	LinkID    string
	TargetURL string
}

// Resolver turns an inbound short code into a redirect target.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver creates a resolver backed by the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{
		repo: repo,
		now:  time.Now,
	}
}

// Resolve looks up the code against both id and short code and applies the
// expiry rule. A miss and an expired link both return ErrNotFound so the
// two are indistinguishable to callers. Storage failures are wrapped and
// never satisfy errors.Is(err, ErrNotFound); callers must treat those as
// "unable to determine" rather than "not found".
func (r *Resolver) Resolve(ctx context.Context, code string) (*Resolved, error) {
	l, err := r.repo.FindByIDOrCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("resolve %q: %w", code, err)
	}

	if l.Expired(r.now()) {
		return nil, ErrNotFound
	}

	return &Resolved{
		LinkID:    l.ID,
		TargetURL: l.TargetURL,
	}, nil
}
