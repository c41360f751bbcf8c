package citation

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/citebase/internal/domain"
)

// Create validates the input, persists a new citation and links its
// classifications in one transaction.
//
// The pre-insert duplicate check gives a friendly error early; the
// unique constraint on citation_key remains the authoritative signal,
// so a concurrent insert still surfaces as domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Citation, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	key, err := domain.MakeCitationKey(input.CitationKey)
	if err != nil {
		return nil, err
	}

	fields, err := domain.ExtractFields(input.Fields)
	if err != nil {
		return nil, err
	}

	entryType, err := s.entryTypes.GetByID(ctx, input.EntryTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("entry_type_id", "unknown entry type")
		}
		return nil, fmt.Errorf("get entry type: %w", err)
	}

	// Duplicate check.
	_, err = s.citations.GetByKey(ctx, key)
	if err == nil {
		return nil, fmt.Errorf("citation %q: %w", key, domain.ErrAlreadyExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	tagNames := domain.ExtractNames(input.Tags)
	categoryNames := domain.ExtractNames(input.Categories)

	var id int64
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		id, createErr = s.citations.Create(txCtx, entryType.ID, key, fields)
		if createErr != nil {
			return fmt.Errorf("create citation: %w", createErr)
		}

		if linkErr := s.link(txCtx, s.tags, id, tagNames); linkErr != nil {
			return fmt.Errorf("link tags: %w", linkErr)
		}
		if linkErr := s.link(txCtx, s.categories, id, categoryNames); linkErr != nil {
			return fmt.Errorf("link categories: %w", linkErr)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.InfoContext(ctx, "citation created", "id", id, "citation_key", key)

	return s.GetByID(ctx, id)
}

// link resolves label names to classifications (creating missing ones)
// and sets them as the citation's full link set.
func (s *Service) link(ctx context.Context, repo classificationRepo, citationID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	labels, err := repo.GetOrCreate(ctx, names)
	if err != nil {
		return err
	}

	return repo.Replace(ctx, citationID, domain.ClassificationIDs(labels))
}
