// Package seeder loads a small embedded demo library into an empty
// database. It runs through the regular citation service so every record
// passes the same validation and classification linking as user input.
package seeder

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/citebase/internal/domain"
	"github.com/heartmarshall/citebase/internal/service/citation"
)

//go:embed demo_data.json
var demoData []byte

type citationService interface {
	Create(ctx context.Context, input citation.CreateInput) (*domain.Citation, error)
	EntryTypes(ctx context.Context) ([]domain.EntryType, error)
}

// Seeder inserts the embedded demo citations.
type Seeder struct {
	log *slog.Logger
	svc citationService
}

// New creates a Seeder.
func New(logger *slog.Logger, svc citationService) *Seeder {
	return &Seeder{log: logger.With("component", "seeder"), svc: svc}
}

type demoRecord struct {
	EntryType   string            `json:"entry_type"`
	CitationKey string            `json:"citation_key"`
	Fields      map[string]string `json:"fields"`
	Tags        []string          `json:"tags"`
	Categories  []string          `json:"categories"`
}

// Run inserts the demo records. Records whose citation key already
// exists are skipped, so running the seeder twice is safe.
func (s *Seeder) Run(ctx context.Context) error {
	var records []demoRecord
	if err := json.Unmarshal(demoData, &records); err != nil {
		return fmt.Errorf("decode demo data: %w", err)
	}

	entryTypes, err := s.svc.EntryTypes(ctx)
	if err != nil {
		return fmt.Errorf("list entry types: %w", err)
	}
	typeIDs := make(map[string]int64, len(entryTypes))
	for _, et := range entryTypes {
		typeIDs[et.Name] = et.ID
	}

	var created, skipped int
	for _, rec := range records {
		entryTypeID, ok := typeIDs[rec.EntryType]
		if !ok {
			return fmt.Errorf("demo record %q: unknown entry type %q", rec.CitationKey, rec.EntryType)
		}

		_, err := s.svc.Create(ctx, citation.CreateInput{
			EntryTypeID: entryTypeID,
			CitationKey: rec.CitationKey,
			Fields:      rec.Fields,
			Tags:        rec.Tags,
			Categories:  rec.Categories,
		})
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			skipped++
		case err != nil:
			return fmt.Errorf("seed %q: %w", rec.CitationKey, err)
		default:
			created++
		}
	}

	s.log.InfoContext(ctx, "seeding finished",
		slog.Int("created", created),
		slog.Int("skipped", skipped),
	)

	return nil
}
