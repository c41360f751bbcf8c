package citation

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/citebase/internal/domain"
)

// GetByID returns a citation with its classifications loaded.
// Returns domain.ErrNotFound if it does not exist.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Citation, error) {
	c, err := s.citations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, fmt.Errorf("load classifications: %w", err)
	}
	return c, nil
}

// GetByKey returns a citation by its unique citation key.
// Returns domain.ErrNotFound if it does not exist.
func (s *Service) GetByKey(ctx context.Context, key string) (*domain.Citation, error) {
	c, err := s.citations.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, fmt.Errorf("load classifications: %w", err)
	}
	return c, nil
}

// FindByID is the tolerant lookup variant: a missing citation returns
// (nil, nil) instead of an error.
func (s *Service) FindByID(ctx context.Context, id int64) (*domain.Citation, error) {
	c, err := s.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// FindByKey is the tolerant lookup variant: a missing citation returns
// (nil, nil) instead of an error.
func (s *Service) FindByKey(ctx context.Context, key string) (*domain.Citation, error) {
	c, err := s.GetByKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return c, err
}
