package citation

import (
	"context"
	"fmt"
)

// Delete removes a citation and sweeps any tags and categories orphaned
// by its removal. A non-positive id is a silent no-op, mirroring forms
// that submit zero for "nothing selected".
//
// The orphan sweep candidates are the labels linked to the citation
// before deletion; join rows themselves go away with the citation row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		tagIDs, err := s.tags.IDsByCitation(txCtx, id)
		if err != nil {
			return fmt.Errorf("capture tag links: %w", err)
		}
		categoryIDs, err := s.categories.IDsByCitation(txCtx, id)
		if err != nil {
			return fmt.Errorf("capture category links: %w", err)
		}

		if err := s.citations.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete citation: %w", err)
		}

		if err := s.tags.DeleteOrphans(txCtx, tagIDs); err != nil {
			return fmt.Errorf("sweep tags: %w", err)
		}
		if err := s.categories.DeleteOrphans(txCtx, categoryIDs); err != nil {
			return fmt.Errorf("sweep categories: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.log.InfoContext(ctx, "citation deleted", "id", id)

	return nil
}
