// Package citation implements the citation management business logic:
// CRUD with classification linking, composable search, BibTeX export and
// DOI metadata lookup.
package citation

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/citebase/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type citationRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Citation, error)
	GetByKey(ctx context.Context, key string) (*domain.Citation, error)
	List(ctx context.Context, page, perPage *int) ([]domain.Citation, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Citation, error)
	ListByKeys(ctx context.Context, keys []string) ([]domain.Citation, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error)
	Create(ctx context.Context, entryTypeID int64, citationKey string, fields domain.Fields) (int64, error)
	Update(ctx context.Context, id int64, params domain.CitationUpdateParams) error
	Delete(ctx context.Context, id int64) error
}

type classificationRepo interface {
	List(ctx context.Context) ([]domain.Classification, error)
	ListByCitation(ctx context.Context, citationID int64) ([]domain.Classification, error)
	IDsByCitation(ctx context.Context, citationID int64) ([]int64, error)
	GetOrCreate(ctx context.Context, names []string) ([]domain.Classification, error)
	Replace(ctx context.Context, citationID int64, ids []int64) error
	DeleteOrphans(ctx context.Context, ids []int64) error
}

type entryTypeRepo interface {
	List(ctx context.Context) ([]domain.EntryType, error)
	GetByID(ctx context.Context, id int64) (*domain.EntryType, error)
	GetByName(ctx context.Context, name string) (*domain.EntryType, error)
	DefaultFields(ctx context.Context, entryTypeID int64) ([]string, error)
}

type metadataProvider interface {
	// Lookup resolves a DOI to raw field values. Returns (nil, nil) when
	// the DOI is not registered.
	Lookup(ctx context.Context, doi string) (map[string]string, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the citation business logic.
type Service struct {
	log        *slog.Logger
	citations  citationRepo
	tags       classificationRepo
	categories classificationRepo
	entryTypes entryTypeRepo
	metadata   metadataProvider
	tx         txManager
}

// NewService creates a new citation service.
func NewService(
	logger *slog.Logger,
	citations citationRepo,
	tags classificationRepo,
	categories classificationRepo,
	entryTypes entryTypeRepo,
	metadata metadataProvider,
	tx txManager,
) *Service {
	return &Service{
		log:        logger.With("service", "citation"),
		citations:  citations,
		tags:       tags,
		categories: categories,
		entryTypes: entryTypes,
		metadata:   metadata,
		tx:         tx,
	}
}

// hydrate loads the tag and category labels for a citation.
func (s *Service) hydrate(ctx context.Context, c *domain.Citation) error {
	tags, err := s.tags.ListByCitation(ctx, c.ID)
	if err != nil {
		return err
	}
	categories, err := s.categories.ListByCitation(ctx, c.ID)
	if err != nil {
		return err
	}

	c.Tags = tags
	c.Categories = categories
	return nil
}

func (s *Service) hydrateAll(ctx context.Context, citations []domain.Citation) error {
	for i := range citations {
		if err := s.hydrate(ctx, &citations[i]); err != nil {
			return err
		}
	}
	return nil
}
