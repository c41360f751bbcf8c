package domain

import (
	"strconv"
	"strings"
)

// FieldYear is the one field name with enforced semantics: digits only,
// value in [0, 9999].
const FieldYear = "year"

const (
	minYear = 0
	maxYear = 9999
)

// reservedFieldKeys are form keys handled by dedicated extraction paths.
// They are never stored in a citation's field map.
var reservedFieldKeys = map[string]struct{}{
	"citation_key":  {},
	"entry_type":    {},
	"entry_type_id": {},
	"category_list": {},
	"tag_list":      {},
}

// Sanitize trims the string and collapses every internal run of
// whitespace to a single space.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MakeCitationKey sanitizes the raw key and replaces each whitespace run
// with a single hyphen ("Doe 2020" -> "Doe-2020"). An empty result is a
// validation error: no citation may be created or updated without a key.
func MakeCitationKey(raw string) (string, error) {
	key := strings.ReplaceAll(Sanitize(raw), " ", "-")
	if key == "" {
		return "", NewValidationError("citation_key", "required")
	}
	return key, nil
}

// ExtractFields turns raw submitted key/value pairs into a cleaned field
// map. Reserved keys are dropped, values are sanitized, and keys whose
// sanitized value is empty are discarded. A malformed year aborts the
// whole extraction — writes are strict, unlike search filters.
func ExtractFields(raw map[string]string) (Fields, error) {
	fields := make(Fields, len(raw))

	for key, value := range raw {
		if _, reserved := reservedFieldKeys[key]; reserved {
			continue
		}

		value = Sanitize(value)
		if value == "" {
			continue
		}

		if key == FieldYear {
			year, err := parseYear(value)
			if err != nil {
				return nil, err
			}
			fields[key] = year
			continue
		}

		fields[key] = value
	}

	return fields, nil
}

// parseYear enforces the hard year rule: ASCII digits only, [0, 9999].
func parseYear(value string) (int, error) {
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, NewValidationError(FieldYear, "must be a number")
		}
	}

	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, NewValidationError(FieldYear, "must be a number")
	}
	if year < minYear || year > maxYear {
		return 0, NewValidationError(FieldYear, "must be between 0 and 9999")
	}

	return year, nil
}

// ExtractNames sanitizes a list of candidate tag/category names, drops
// blanks, and deduplicates preserving first-occurrence order.
func ExtractNames(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))

	for _, name := range raw {
		name = Sanitize(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
