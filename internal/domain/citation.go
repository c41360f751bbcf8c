package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Fields is the semi-structured bibliographic metadata of a citation,
// serialized as a JSON object at the store boundary. Values are strings,
// except "year" which is stored as a number. After a JSON round trip
// numeric values surface as float64.
type Fields map[string]any

// Get returns the field value as a string, or "" if absent.
func (f Fields) Get(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	return fieldString(v)
}

// Year returns the year field as an int, if present and parseable.
func (f Fields) Year() (int, bool) {
	v, ok := f[FieldYear]
	if !ok {
		return 0, false
	}
	switch y := v.(type) {
	case int:
		return y, true
	case int64:
		return int(y), true
	case float64:
		return int(y), true
	case string:
		n, err := strconv.Atoi(y)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// sortedKeys returns the field names in lexicographic order.
func (f Fields) sortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; years are whole numbers.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Citation is one bibliographic record: an entry type, a unique
// human-chosen key, a flexible field map, and tag/category labels.
type Citation struct {
	ID          int64
	EntryType   EntryType
	CitationKey string
	Fields      Fields
	Tags        []Classification
	Categories  []Classification
}

// container builds the container segment of the human-readable view from
// journaltitle/booktitle/publisher, volume(number) and pages.
func (c Citation) container() string {
	var segments []string

	first := c.Fields.Get("journaltitle")
	if first == "" {
		first = c.Fields.Get("booktitle")
	}
	if first == "" {
		first = c.Fields.Get("publisher")
	}
	if first != "" {
		segments = append(segments, first)
	}

	if volume := c.Fields.Get("volume"); volume != "" {
		seg := volume
		if number := c.Fields.Get("number"); number != "" {
			seg += "(" + number + ")"
		}
		segments = append(segments, seg)
	}

	if pages := c.Fields.Get("pages"); pages != "" {
		segments = append(segments, "pp. "+pages)
	}

	return strings.Join(segments, ", ")
}

// HumanReadable renders the citation as reference-list prose:
// "Author (Year). Title. Container, volume(number), pp. pages."
// Falls back to "key (entry type)" when no fields are usable.
func (c Citation) HumanReadable() string {
	var parts []string

	var header []string
	if author := c.Fields.Get("author"); author != "" {
		header = append(header, author)
	}
	if year := c.Fields.Get(FieldYear); year != "" {
		header = append(header, "("+year+")")
	}
	if len(header) > 0 {
		parts = append(parts, strings.Join(header, " ")+".")
	}

	if title := c.Fields.Get("title"); title != "" {
		parts = append(parts, title+".")
	}

	if container := c.container(); container != "" {
		parts = append(parts, container)
	}

	result := strings.TrimSpace(strings.Join(parts, " "))
	if result == "" {
		return fmt.Sprintf("%s (%s)", c.CitationKey, c.EntryType.Name)
	}
	if !strings.HasSuffix(result, ".") {
		result += "."
	}
	return result
}

// Compact renders a one-line summary: entry type, key, and up to three
// field values in key order.
func (c Citation) Compact() string {
	keys := c.Fields.sortedKeys()

	shown := keys
	if len(shown) > 3 {
		shown = shown[:3]
	}
	values := make([]string, len(shown))
	for i, k := range shown {
		values[i] = c.Fields.Get(k)
	}

	brief := strings.Join(values, ", ")
	if len(keys) > 3 {
		brief += ", ..."
	}

	return fmt.Sprintf("%s — %s — %s", c.EntryType.Name, c.CitationKey, brief)
}

// BibTeX renders the citation as a BibTeX entry block. Fields appear
// sorted by name, one per indented line, no trailing comma:
//
//	@book{Doe-2020,
//	  author = {Doe, J.},
//	  title = {On Testing}
//	}
func (c Citation) BibTeX() string {
	const indent = "  "

	keys := c.Fields.sortedKeys()
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s = {%s}", k, c.Fields.Get(k))
	}

	return fmt.Sprintf("@%s{%s,\n%s%s\n}",
		c.EntryType.Name, c.CitationKey, indent, strings.Join(lines, ",\n"+indent))
}

func (c Citation) String() string {
	return fmt.Sprintf("@%s{%s, %v}", c.EntryType.Name, c.CitationKey, map[string]any(c.Fields))
}

// CitationUpdateParams carries a partial update: nil means "leave as is".
type CitationUpdateParams struct {
	EntryTypeID *int64
	CitationKey *string
	Fields      Fields // nil = leave as is
}

// IsEmpty reports whether the update would touch no columns.
func (p CitationUpdateParams) IsEmpty() bool {
	return p.EntryTypeID == nil && p.CitationKey == nil && p.Fields == nil
}
