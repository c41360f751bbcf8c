// Package classification implements the named-label repositories (tags
// and categories) using PostgreSQL. Both are the same structure with a
// different table and join table, so one Repo serves both — instantiated
// once per Kind instead of a type hierarchy.
package classification

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/citebase/internal/adapter/postgres"
	"github.com/heartmarshall/citebase/internal/domain"
)

// Kind names the tables backing one classification namespace.
type Kind struct {
	// Entity is the singular name used in error messages ("tag").
	Entity string
	// Table holds the labels (id, name).
	Table string
	// JoinTable links labels to citations (citation_id, <JoinColumn>).
	JoinTable string
	// JoinColumn is the label foreign key column in JoinTable.
	JoinColumn string
}

// The two instantiations. Table identifiers are compile-time constants,
// never user input.
var (
	Tags = Kind{
		Entity:     "tag",
		Table:      "tags",
		JoinTable:  "citation_tags",
		JoinColumn: "tag_id",
	}
	Categories = Kind{
		Entity:     "category",
		Table:      "categories",
		JoinTable:  "citation_categories",
		JoinColumn: "category_id",
	}
)

// Repo provides classification persistence for one Kind.
type Repo struct {
	db   postgres.DB
	kind Kind
}

// New creates a repository bound to the given kind's tables.
func New(db postgres.DB, kind Kind) *Repo {
	return &Repo{db: db, kind: kind}
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a classification by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Classification, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

// GetByName returns a classification by exact, case-sensitive name.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.Classification, error) {
	return r.getOne(ctx, sq.Eq{"name": name}, name)
}

func (r *Repo) getOne(ctx context.Context, pred any, ref any) (*domain.Classification, error) {
	query, args, err := builder.
		Select("id", "name").
		From(r.kind.Table).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var c domain.Classification
	if err := q.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name); err != nil {
		return nil, postgres.MapError(err, r.kind.Entity, ref)
	}

	return &c, nil
}

// List returns all classifications ordered by name, then id.
// Returns an empty slice (not nil) when there are none.
func (r *Repo) List(ctx context.Context) ([]domain.Classification, error) {
	query, args, err := builder.
		Select("id", "name").
		From(r.kind.Table).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.queryList(ctx, query, args...)
}

// ListByCitation returns the classifications linked to a citation,
// ordered by name.
func (r *Repo) ListByCitation(ctx context.Context, citationID int64) ([]domain.Classification, error) {
	query, args, err := builder.
		Select("l.id", "l.name").
		From(r.kind.Table+" l").
		Join(fmt.Sprintf("%s j ON j.%s = l.id", r.kind.JoinTable, r.kind.JoinColumn)).
		Where(sq.Eq{"j.citation_id": citationID}).
		OrderBy("l.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.queryList(ctx, query, args...)
}

// IDsByCitation returns the ids of the classifications linked to a
// citation. Used to capture the pre-mutation link set for the orphan
// sweep.
func (r *Repo) IDsByCitation(ctx context.Context, citationID int64) ([]int64, error) {
	query, args, err := builder.
		Select(r.kind.JoinColumn).
		From(r.kind.JoinTable).
		Where(sq.Eq{"citation_id": citationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s ids by citation: %w", r.kind.Entity, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *Repo) queryList(ctx context.Context, query string, args ...any) ([]domain.Classification, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", r.kind.Entity, err)
	}
	defer rows.Close()

	return scanClassifications(rows)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// GetOrCreate resolves names to persisted classifications, creating the
// missing ones in one statement. Input is expected sanitized and
// deduplicated; output preserves input order. Idempotent: a second call
// with the same names returns the same rows.
func (r *Repo) GetOrCreate(ctx context.Context, names []string) ([]domain.Classification, error) {
	if len(names) == 0 {
		return []domain.Classification{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	existing, err := r.byNames(ctx, q, names)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range names {
		if _, ok := existing[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		created, err := r.createBatch(ctx, q, missing)
		if err != nil {
			return nil, err
		}
		for name, c := range created {
			existing[name] = c
		}
	}

	result := make([]domain.Classification, 0, len(names))
	for _, name := range names {
		result = append(result, existing[name])
	}

	return result, nil
}

func (r *Repo) byNames(ctx context.Context, q postgres.Querier, names []string) (map[string]domain.Classification, error) {
	query, args, err := builder.
		Select("id", "name").
		From(r.kind.Table).
		Where(sq.Eq{"name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%ss by names: %w", r.kind.Entity, err)
	}
	defer rows.Close()

	return scanClassificationMap(rows)
}

func (r *Repo) createBatch(ctx context.Context, q postgres.Querier, names []string) (map[string]domain.Classification, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (name) SELECT unnest($1::text[]) RETURNING id, name",
		r.kind.Table)

	rows, err := q.Query(ctx, query, names)
	if err != nil {
		return nil, postgres.MapError(err, r.kind.Entity, names)
	}
	defer rows.Close()

	return scanClassificationMap(rows)
}

// Replace sets the full link set for a citation: existing join rows are
// deleted, then the given classification ids are inserted. An empty id
// list clears all links. Orphan cleanup of the dropped labels is the
// caller's job.
func (r *Repo) Replace(ctx context.Context, citationID int64, ids []int64) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if err := r.unlink(ctx, q, citationID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (citation_id, %s) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING",
		r.kind.JoinTable, r.kind.JoinColumn)

	if _, err := q.Exec(ctx, query, citationID, ids); err != nil {
		return postgres.MapError(err, r.kind.Entity+" link", citationID)
	}

	return nil
}

func (r *Repo) unlink(ctx context.Context, q postgres.Querier, citationID int64) error {
	query, args, err := builder.
		Delete(r.kind.JoinTable).
		Where(sq.Eq{"citation_id": citationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, r.kind.Entity+" link", citationID)
	}

	return nil
}

// DeleteOrphans removes the given classifications if they no longer have
// any citation links. The id set must be captured before the mutation
// that may orphan them.
func (r *Repo) DeleteOrphans(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`DELETE FROM %s l WHERE l.id = ANY($1::bigint[])
		 AND NOT EXISTS (SELECT 1 FROM %s j WHERE j.%s = l.id)`,
		r.kind.Table, r.kind.JoinTable, r.kind.JoinColumn)

	q := postgres.QuerierFromCtx(ctx, r.db)
	if _, err := q.Exec(ctx, query, ids); err != nil {
		return postgres.MapError(err, r.kind.Entity, ids)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanClassifications(rows pgx.Rows) ([]domain.Classification, error) {
	var result []domain.Classification
	for rows.Next() {
		var c domain.Classification
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if result == nil {
		result = []domain.Classification{}
	}

	return result, nil
}

func scanClassificationMap(rows pgx.Rows) (map[string]domain.Classification, error) {
	result := make(map[string]domain.Classification)
	for rows.Next() {
		var c domain.Classification
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		result[c.Name] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
