package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort directions and columns accepted by SearchFilter. Anything else
// falls back to the defaults — search parameters are advisory, never an
// error.
const (
	SortByYear        = "year"
	SortByCitationKey = "citation_key"

	DirectionASC  = "ASC"
	DirectionDESC = "DESC"
)

// SearchFilter is the canonical, normalized search query. Zero values
// mean "filter absent"; an entirely zero filter lists all citations in id
// order.
type SearchFilter struct {
	// Query is matched case-insensitively against the serialized fields
	// blob. Case is preserved here; the query layer handles insensitivity.
	Query string

	CitationKey string
	EntryType   string
	Author      string

	YearFrom *int
	YearTo   *int

	// Tags/Categories: citation must carry at least one label whose name
	// is in the set.
	Tags       []string
	Categories []string

	// SortBy is "" (id ascending), SortByYear, or SortByCitationKey.
	SortBy string
	// Direction is DirectionASC or DirectionDESC.
	Direction string
}

// ParseSearchFilter normalizes raw request parameters into a
// SearchFilter. Malformed values degrade to "filter absent" instead of
// failing: the strictness belongs to the write path, not here.
func ParseSearchFilter(params url.Values) SearchFilter {
	f := SearchFilter{
		Query:       Sanitize(params.Get("q")),
		CitationKey: strings.ToLower(Sanitize(params.Get("citation_key"))),
		EntryType:   strings.ToLower(Sanitize(params.Get("entry_type"))),
		Author:      strings.ToLower(Sanitize(params.Get("author"))),
		YearFrom:    parseYearParam(params.Get("year_from")),
		YearTo:      parseYearParam(params.Get("year_to")),
		Tags:        ExtractNames(params["tag_list"]),
		Categories:  ExtractNames(params["category_list"]),
	}

	switch strings.ToLower(Sanitize(params.Get("sort_by"))) {
	case SortByYear:
		f.SortBy = SortByYear
	case SortByCitationKey:
		f.SortBy = SortByCitationKey
	}

	if strings.ToUpper(Sanitize(params.Get("direction"))) == DirectionDESC {
		f.Direction = DirectionDESC
	} else {
		f.Direction = DirectionASC
	}

	return f
}

// IsEmpty reports whether no filter is active (sorting aside).
func (f SearchFilter) IsEmpty() bool {
	return f.Query == "" && f.CitationKey == "" && f.EntryType == "" &&
		f.Author == "" && f.YearFrom == nil && f.YearTo == nil &&
		len(f.Tags) == 0 && len(f.Categories) == 0
}

// parseYearParam accepts digit-only strings of any magnitude; anything
// else is absent. The [0, 9999] rule applies to stored fields only, so
// an out-of-range bound stays active and simply matches nothing.
func parseYearParam(raw string) *int {
	raw = Sanitize(raw)
	if raw == "" {
		return nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil
		}
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &year
}
