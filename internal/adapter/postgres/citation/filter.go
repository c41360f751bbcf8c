package citation

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/citebase/internal/domain"
)

// buildSearch composes the dynamic search query: each active filter
// contributes one predicate, combined by AND. Values are always bound as
// parameters; sort column and direction come from fixed whitelists.
func buildSearch(f domain.SearchFilter) sq.SelectBuilder {
	query := selectCitations()

	if f.Query != "" {
		query = query.Where(sq.ILike{"c.fields::text": contains(f.Query)})
	}
	if f.CitationKey != "" {
		query = query.Where(sq.ILike{"c.citation_key": contains(f.CitationKey)})
	}
	if f.EntryType != "" {
		query = query.Where(sq.Eq{"et.name": f.EntryType})
	}
	if f.Author != "" {
		query = query.Where(sq.ILike{"c.fields->>'author'": contains(f.Author)})
	}
	if f.YearFrom != nil {
		query = query.Where(sq.GtOrEq{"(c.fields->>'year')::int": *f.YearFrom})
	}
	if f.YearTo != nil {
		query = query.Where(sq.LtOrEq{"(c.fields->>'year')::int": *f.YearTo})
	}
	if len(f.Tags) > 0 {
		query = query.Where(
			`EXISTS (SELECT 1 FROM citation_tags ct JOIN tags t ON ct.tag_id = t.id
			 WHERE ct.citation_id = c.id AND t.name = ANY(?))`, f.Tags)
	}
	if len(f.Categories) > 0 {
		query = query.Where(
			`EXISTS (SELECT 1 FROM citation_categories cc JOIN categories cat ON cc.category_id = cat.id
			 WHERE cc.citation_id = c.id AND cat.name = ANY(?))`, f.Categories)
	}

	return query.OrderBy(orderClause(f))
}

// orderClause resolves sorting from the whitelist. Year sorting compares
// the field as an integer; rows without a parseable year sort per the
// store's NULL ordering.
func orderClause(f domain.SearchFilter) string {
	dir := domain.DirectionASC
	if f.Direction == domain.DirectionDESC {
		dir = domain.DirectionDESC
	}

	switch f.SortBy {
	case domain.SortByYear:
		return "(c.fields->>'year')::int " + dir
	case domain.SortByCitationKey:
		return "c.citation_key " + dir
	default:
		return "c.id ASC"
	}
}

func contains(s string) string {
	return "%" + s + "%"
}
