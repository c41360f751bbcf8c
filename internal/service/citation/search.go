package citation

import (
	"context"
	"fmt"

	"github.com/heartmarshall/citebase/internal/domain"
)

// Search returns the citations matching the conjunction of the filter's
// active predicates, with classifications loaded. An empty filter is
// equivalent to listing everything.
//
// The filter is advisory by construction: domain.ParseSearchFilter has
// already dropped anything unusable, so no validation happens here.
func (s *Service) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error) {
	citations, err := s.citations.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search citations: %w", err)
	}

	if err := s.hydrateAll(ctx, citations); err != nil {
		return nil, fmt.Errorf("load classifications: %w", err)
	}

	return citations, nil
}
