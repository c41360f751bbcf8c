package citation

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/citebase/internal/domain"
)

// Export renders the selected citations as a BibTeX document. IDs take
// precedence over keys when both are given; with neither, every
// citation is exported. Unknown ids and keys are silently skipped.
func (s *Service) Export(ctx context.Context, input ExportInput) (string, error) {
	citations, err := s.selectForExport(ctx, input)
	if err != nil {
		return "", err
	}

	blocks := make([]string, len(citations))
	for i, c := range citations {
		blocks[i] = c.BibTeX()
	}

	return strings.Join(blocks, "\n\n") + "\n", nil
}

func (s *Service) selectForExport(ctx context.Context, input ExportInput) ([]domain.Citation, error) {
	switch {
	case len(input.IDs) > 0:
		citations, err := s.citations.ListByIDs(ctx, input.IDs)
		if err != nil {
			return nil, fmt.Errorf("export by ids: %w", err)
		}
		return citations, nil
	case len(input.Keys) > 0:
		citations, err := s.citations.ListByKeys(ctx, input.Keys)
		if err != nil {
			return nil, fmt.Errorf("export by keys: %w", err)
		}
		return citations, nil
	default:
		citations, err := s.citations.List(ctx, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("export all: %w", err)
		}
		return citations, nil
	}
}
