package citation

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/citebase/internal/domain"
)

// Update applies a partial update to a citation. Nil input fields are
// left untouched; a provided field map replaces the stored one wholesale,
// except that a map with nothing usable in it (empty, or blank after
// sanitization) is treated as absent; a provided label list replaces the
// link set, with an empty list clearing it. An input carrying no changes
// returns the current state without opening a transaction.
//
// Labels dropped by a replace are swept if the citation was their last
// link. The orphan sweep is computed from the link set captured before
// the replace.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Citation, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.IsEmpty() {
		return s.GetByID(ctx, input.ID)
	}

	params, err := s.buildUpdateParams(ctx, input)
	if err != nil {
		return nil, err
	}

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if updErr := s.citations.Update(txCtx, input.ID, params); updErr != nil {
			return fmt.Errorf("update citation: %w", updErr)
		}

		if input.Tags != nil {
			if repErr := s.replaceWithSweep(txCtx, s.tags, input.ID, *input.Tags); repErr != nil {
				return fmt.Errorf("replace tags: %w", repErr)
			}
		}
		if input.Categories != nil {
			if repErr := s.replaceWithSweep(txCtx, s.categories, input.ID, *input.Categories); repErr != nil {
				return fmt.Errorf("replace categories: %w", repErr)
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.InfoContext(ctx, "citation updated", "id", input.ID)

	return s.GetByID(ctx, input.ID)
}

// buildUpdateParams resolves the input into column-level params,
// checking referenced entities and key uniqueness up front.
func (s *Service) buildUpdateParams(ctx context.Context, input UpdateInput) (domain.CitationUpdateParams, error) {
	var params domain.CitationUpdateParams

	if input.EntryTypeID != nil {
		entryType, err := s.entryTypes.GetByID(ctx, *input.EntryTypeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return params, domain.NewValidationError("entry_type_id", "unknown entry type")
			}
			return params, fmt.Errorf("get entry type: %w", err)
		}
		params.EntryTypeID = &entryType.ID
	}

	if input.CitationKey != nil {
		key, err := domain.MakeCitationKey(*input.CitationKey)
		if err != nil {
			return params, err
		}

		existing, err := s.citations.GetByKey(ctx, key)
		if err == nil && existing.ID != input.ID {
			return params, fmt.Errorf("citation %q: %w", key, domain.ErrAlreadyExists)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return params, fmt.Errorf("check duplicate: %w", err)
		}

		params.CitationKey = &key
	}

	if input.Fields != nil {
		fields, err := domain.ExtractFields(input.Fields)
		if err != nil {
			return params, err
		}
		// A map left empty after extraction (all values blank or
		// reserved) leaves the stored fields as is.
		if len(fields) > 0 {
			params.Fields = fields
		}
	}

	return params, nil
}

// replaceWithSweep sets the citation's full link set and removes any
// previously linked labels left without citations. The previous link set
// is captured before the replace.
func (s *Service) replaceWithSweep(ctx context.Context, repo classificationRepo, citationID int64, rawNames []string) error {
	before, err := repo.IDsByCitation(ctx, citationID)
	if err != nil {
		return err
	}

	var ids []int64
	if names := domain.ExtractNames(rawNames); len(names) > 0 {
		labels, err := repo.GetOrCreate(ctx, names)
		if err != nil {
			return err
		}
		ids = domain.ClassificationIDs(labels)
	}

	if err := repo.Replace(ctx, citationID, ids); err != nil {
		return err
	}

	return repo.DeleteOrphans(ctx, before)
}
