package citation

import (
	"context"
	"fmt"

	"github.com/heartmarshall/citebase/internal/domain"
)

// List returns citations ordered by id, with their classifications
// loaded. Page and perPage are optional; when both are given a paging
// window is applied, with values below 1 clamped to 1.
func (s *Service) List(ctx context.Context, page, perPage *int) ([]domain.Citation, error) {
	citations, err := s.citations.List(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list citations: %w", err)
	}

	if err := s.hydrateAll(ctx, citations); err != nil {
		return nil, fmt.Errorf("load classifications: %w", err)
	}

	return citations, nil
}
