package citation

import (
	"context"
	"fmt"

	"github.com/heartmarshall/citebase/internal/domain"
)

// EntryTypes returns all entry types ordered by name.
func (s *Service) EntryTypes(ctx context.Context) ([]domain.EntryType, error) {
	entryTypes, err := s.entryTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entry types: %w", err)
	}
	return entryTypes, nil
}

// DefaultFields returns the advisory field names for an entry type,
// sorted alphabetically. The list guides form rendering only; writes
// accept any field names.
func (s *Service) DefaultFields(ctx context.Context, entryTypeID int64) ([]string, error) {
	if _, err := s.entryTypes.GetByID(ctx, entryTypeID); err != nil {
		return nil, err
	}

	fields, err := s.entryTypes.DefaultFields(ctx, entryTypeID)
	if err != nil {
		return nil, fmt.Errorf("default fields: %w", err)
	}
	return fields, nil
}

// Tags returns all tags ordered by name.
func (s *Service) Tags(ctx context.Context) ([]domain.Classification, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Categories returns all categories ordered by name.
func (s *Service) Categories(ctx context.Context) ([]domain.Classification, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
