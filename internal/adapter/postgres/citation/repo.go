// Package citation implements the citation repository using PostgreSQL.
// Citations hold their bibliographic metadata as a JSONB field map;
// tag/category links live in join tables owned by the classification
// repository.
package citation

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/citebase/internal/adapter/postgres"
	"github.com/heartmarshall/citebase/internal/domain"
)

// Repo provides citation persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new citation repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// builder is the statement builder with PostgreSQL placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// selectCitations is the base SELECT with the entry-type join.
func selectCitations() sq.SelectBuilder {
	return builder.
		Select("c.id", "et.id", "et.name", "c.citation_key", "c.fields").
		From("citations c").
		Join("entry_types et ON c.entry_type_id = et.id")
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a citation by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Citation, error) {
	return r.getOne(ctx, sq.Eq{"c.id": id}, "citation", id)
}

// GetByKey returns a citation by its unique citation key (exact match).
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByKey(ctx context.Context, key string) (*domain.Citation, error) {
	return r.getOne(ctx, sq.Eq{"c.citation_key": key}, "citation", key)
}

func (r *Repo) getOne(ctx context.Context, pred any, entity string, ref any) (*domain.Citation, error) {
	query, args, err := selectCitations().Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	row := q.QueryRow(ctx, query, args...)

	c, err := scanCitation(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, ref)
	}
	return c, nil
}

// List returns citations ordered by id ascending. When both page and
// perPage are provided they are clamped to a minimum of 1 and a
// LIMIT/OFFSET window is applied; otherwise all citations are returned.
func (r *Repo) List(ctx context.Context, page, perPage *int) ([]domain.Citation, error) {
	query := selectCitations().OrderBy("c.id ASC")

	if page != nil && perPage != nil {
		p := max(*page, 1)
		pp := max(*perPage, 1)
		query = query.
			Limit(uint64(pp)).
			Offset(uint64((p - 1) * pp))
	}

	return r.list(ctx, query, "list citations")
}

// ListByIDs returns the citations with the given ids, ordered by id.
// Missing ids are silently absent from the result.
func (r *Repo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Citation, error) {
	if len(ids) == 0 {
		return []domain.Citation{}, nil
	}
	query := selectCitations().Where(sq.Eq{"c.id": ids}).OrderBy("c.id ASC")
	return r.list(ctx, query, "list citations by ids")
}

// ListByKeys returns the citations with the given citation keys, ordered by id.
func (r *Repo) ListByKeys(ctx context.Context, keys []string) ([]domain.Citation, error) {
	if len(keys) == 0 {
		return []domain.Citation{}, nil
	}
	query := selectCitations().Where(sq.Eq{"c.citation_key": keys}).OrderBy("c.id ASC")
	return r.list(ctx, query, "list citations by keys")
}

// Search returns citations matching the conjunction of the filter's
// active predicates. See buildSearch for the composition rules.
func (r *Repo) Search(ctx context.Context, f domain.SearchFilter) ([]domain.Citation, error) {
	return r.list(ctx, buildSearch(f), "search citations")
}

func (r *Repo) list(ctx context.Context, query sq.SelectBuilder, op string) ([]domain.Citation, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return scanCitations(rows)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new citation and returns its assigned id.
// A duplicate citation_key surfaces as domain.ErrAlreadyExists via the
// unique constraint — this is the authoritative duplicate signal.
func (r *Repo) Create(ctx context.Context, entryTypeID int64, citationKey string, fields domain.Fields) (int64, error) {
	blob, err := marshalFields(fields)
	if err != nil {
		return 0, fmt.Errorf("encode fields: %w", err)
	}

	query, args, err := builder.
		Insert("citations").
		Columns("entry_type_id", "citation_key", "fields").
		Values(entryTypeID, citationKey, blob).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var id int64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "citation", citationKey)
	}

	return id, nil
}

// Update applies a partial update. Only non-nil params touch columns; a
// call with an empty params issues no statement at all.
// Returns domain.ErrNotFound if the citation does not exist.
func (r *Repo) Update(ctx context.Context, id int64, params domain.CitationUpdateParams) error {
	if params.IsEmpty() {
		return nil
	}

	update := builder.Update("citations").Where(sq.Eq{"id": id})

	if params.EntryTypeID != nil {
		update = update.Set("entry_type_id", *params.EntryTypeID)
	}
	if params.CitationKey != nil {
		update = update.Set("citation_key", *params.CitationKey)
	}
	if params.Fields != nil {
		blob, err := marshalFields(params.Fields)
		if err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}
		update = update.Set("fields", blob)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "citation", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("citation %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a citation row. Join rows are removed by ON DELETE
// CASCADE; orphan cleanup of tags/categories is the caller's job.
// Returns domain.ErrNotFound if the citation does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	query, args, err := builder.Delete("citations").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "citation", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("citation %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning and field (de)serialization
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCitation(row rowScanner) (*domain.Citation, error) {
	var (
		c    domain.Citation
		blob []byte
	)

	if err := row.Scan(&c.ID, &c.EntryType.ID, &c.EntryType.Name, &c.CitationKey, &blob); err != nil {
		return nil, err
	}

	c.Fields = unmarshalFields(blob)
	return &c, nil
}

func scanCitations(rows pgx.Rows) ([]domain.Citation, error) {
	var result []domain.Citation
	for rows.Next() {
		c, err := scanCitation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if result == nil {
		result = []domain.Citation{}
	}

	return result, nil
}

func marshalFields(fields domain.Fields) ([]byte, error) {
	if fields == nil {
		fields = domain.Fields{}
	}
	return json.Marshal(fields)
}

// unmarshalFields decodes the stored JSON blob. Malformed content
// degrades to an empty map — this is a documented contract of the
// deserialization boundary, not an accident.
func unmarshalFields(blob []byte) domain.Fields {
	if len(blob) == 0 {
		return domain.Fields{}
	}

	var fields domain.Fields
	if err := json.Unmarshal(blob, &fields); err != nil || fields == nil {
		return domain.Fields{}
	}
	return fields
}
