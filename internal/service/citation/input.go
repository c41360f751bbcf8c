package citation

import (
	"strings"

	"github.com/heartmarshall/citebase/internal/domain"
)

const (
	maxCitationKeyLen = 255
	maxFieldKeyLen    = 100
	maxFieldValueLen  = 5000
	maxFieldCount     = 100
	maxLabelCount     = 50
)

// CreateInput holds the parameters for creating a citation.
type CreateInput struct {
	EntryTypeID int64
	CitationKey string
	Fields      map[string]string
	Tags        []string
	Categories  []string
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.EntryTypeID <= 0 {
		errs = append(errs, domain.FieldError{Field: "entry_type_id", Message: "required"})
	}
	if strings.TrimSpace(i.CitationKey) == "" {
		errs = append(errs, domain.FieldError{Field: "citation_key", Message: "required"})
	} else if len(i.CitationKey) > maxCitationKeyLen {
		errs = append(errs, domain.FieldError{Field: "citation_key", Message: "too long (max 255)"})
	}

	errs = append(errs, validateFieldMap(i.Fields)...)
	errs = append(errs, validateLabels("tag_list", i.Tags)...)
	errs = append(errs, validateLabels("category_list", i.Categories)...)

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateInput holds the parameters for a partial citation update. Nil
// pointer fields are left untouched; a non-nil empty label list clears
// the corresponding links.
type UpdateInput struct {
	ID          int64
	EntryTypeID *int64
	CitationKey *string
	Fields      map[string]string
	Tags        *[]string
	Categories  *[]string
}

// IsEmpty reports whether the input carries no changes at all.
func (i *UpdateInput) IsEmpty() bool {
	return i.EntryTypeID == nil &&
		i.CitationKey == nil &&
		i.Fields == nil &&
		i.Tags == nil &&
		i.Categories == nil
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	if i.EntryTypeID != nil && *i.EntryTypeID <= 0 {
		errs = append(errs, domain.FieldError{Field: "entry_type_id", Message: "must be positive"})
	}
	if i.CitationKey != nil {
		if strings.TrimSpace(*i.CitationKey) == "" {
			errs = append(errs, domain.FieldError{Field: "citation_key", Message: "required"})
		} else if len(*i.CitationKey) > maxCitationKeyLen {
			errs = append(errs, domain.FieldError{Field: "citation_key", Message: "too long (max 255)"})
		}
	}

	errs = append(errs, validateFieldMap(i.Fields)...)
	if i.Tags != nil {
		errs = append(errs, validateLabels("tag_list", *i.Tags)...)
	}
	if i.Categories != nil {
		errs = append(errs, validateLabels("category_list", *i.Categories)...)
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ExportInput selects the citations to export. IDs take precedence over
// keys when both are present; empty input exports everything.
type ExportInput struct {
	IDs  []int64
	Keys []string
}

func validateFieldMap(fields map[string]string) []domain.FieldError {
	var errs []domain.FieldError

	if len(fields) > maxFieldCount {
		errs = append(errs, domain.FieldError{Field: "fields", Message: "too many (max 100)"})
	}
	for key, value := range fields {
		if len(key) > maxFieldKeyLen {
			errs = append(errs, domain.FieldError{Field: key, Message: "field name too long (max 100)"})
		}
		if len(value) > maxFieldValueLen {
			errs = append(errs, domain.FieldError{Field: key, Message: "too long (max 5000)"})
		}
	}

	return errs
}

func validateLabels(field string, labels []string) []domain.FieldError {
	if len(labels) > maxLabelCount {
		return []domain.FieldError{{Field: field, Message: "too many (max 50)"}}
	}
	return nil
}
