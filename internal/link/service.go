package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CodeGenerator produces a new system short code.
type CodeGenerator func() string

// Service creates links. Ownership and authorization live outside this
// module; the service only guarantees code uniqueness and well-formed
// records.
type Service struct {
	repo         Repository
	generateCode CodeGenerator
	now          func() time.Time
}

// NewService creates a link service with an injected code generator.
func NewService(repo Repository, generator CodeGenerator) *Service {
	return &Service{
		repo:         repo,
		generateCode: generator,
		now:          time.Now,
	}
}

// Create stores a new link. When alias is empty a system code is generated;
// otherwise the alias becomes the short code and must not collide with an
// existing id or code.
func (s *Service) Create(ctx context.Context, targetURL, alias string, expiresAt *time.Time) (*Link, error) {
	code := alias
	if code == "" {
		code = s.generateCode()
	} else {
		_, err := s.repo.FindByIDOrCode(ctx, code)
		if err == nil {
			return nil, ErrAliasTaken
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check alias %q: %w", code, err)
		}
	}

	l := &Link{
		ID:        uuid.NewString(),
		ShortCode: code,
		TargetURL: targetURL,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("save link: %w", err)
	}

	return l, nil
}

// Get returns the link matching the given id or code, expired or not.
// Used by stats reads, which still report on expired links.
func (s *Service) Get(ctx context.Context, code string) (*Link, error) {
	return s.repo.FindByIDOrCode(ctx, code)
}
