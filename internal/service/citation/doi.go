package citation

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/citebase/internal/domain"
)

// LookupDOI resolves a DOI to a cleaned field map ready to prefill a
// citation form. Returns domain.ErrNotFound when the DOI is not
// registered. The provider's raw values pass through the same extraction
// as user input, so the year rule holds for fetched metadata too.
func (s *Service) LookupDOI(ctx context.Context, doi string) (domain.Fields, error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return nil, domain.NewValidationError("doi", "required")
	}

	raw, err := s.metadata.Lookup(ctx, doi)
	if err != nil {
		return nil, fmt.Errorf("lookup doi %q: %w", doi, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("doi %q: %w", doi, domain.ErrNotFound)
	}

	fields, err := domain.ExtractFields(raw)
	if err != nil {
		s.log.WarnContext(ctx, "doi metadata failed field extraction", "doi", doi, "error", err)
		return nil, err
	}

	return fields, nil
}
