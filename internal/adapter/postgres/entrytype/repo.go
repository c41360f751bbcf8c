// Package entrytype implements the entry-type repository using
// PostgreSQL. Entry types are read-mostly reference data seeded by
// migrations; citation operations only look them up.
package entrytype

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/citebase/internal/adapter/postgres"
	"github.com/heartmarshall/citebase/internal/domain"
)

// Repo provides entry-type lookups backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new entry-type repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// List returns all entry types ordered by name, then id.
func (r *Repo) List(ctx context.Context) ([]domain.EntryType, error) {
	query, args, err := builder.
		Select("id", "name").
		From("entry_types").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entry types: %w", err)
	}
	defer rows.Close()

	result := []domain.EntryType{}
	for rows.Next() {
		var et domain.EntryType
		if err := rows.Scan(&et.ID, &et.Name); err != nil {
			return nil, err
		}
		result = append(result, et)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByID returns an entry type by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.EntryType, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

// GetByName returns an entry type by exact name.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.EntryType, error) {
	return r.getOne(ctx, sq.Eq{"name": name}, name)
}

func (r *Repo) getOne(ctx context.Context, pred any, ref any) (*domain.EntryType, error) {
	query, args, err := builder.
		Select("id", "name").
		From("entry_types").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var et domain.EntryType
	if err := q.QueryRow(ctx, query, args...).Scan(&et.ID, &et.Name); err != nil {
		return nil, postgres.MapError(err, "entry type", ref)
	}

	return &et, nil
}

// DefaultFields returns the advisory field names for an entry type,
// sorted alphabetically. The list guides form rendering; it is not
// enforced at write time.
func (r *Repo) DefaultFields(ctx context.Context, entryTypeID int64) ([]string, error) {
	query, args, err := builder.
		Select("df.name").
		From("entry_type_default_fields ef").
		Join("default_fields df ON ef.default_field_id = df.id").
		Where(sq.Eq{"ef.entry_type_id": entryTypeID}).
		OrderBy("df.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("default fields: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
