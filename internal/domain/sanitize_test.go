package domain

import (
	"errors"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"trims", "  hello  ", "hello"},
		{"collapses runs", "a   b\t\tc", "a b c"},
		{"newlines", "a\nb", "a b"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeCitationKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"simple", "Doe2020", "Doe2020", false},
		{"space to hyphen", "Doe 2020", "Doe-2020", false},
		{"run to single hyphen", "Doe   2020  b", "Doe-2020-b", false},
		{"trimmed", "  Doe 2020  ", "Doe-2020", false},
		{"empty", "", "", true},
		{"whitespace only", " \t ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := MakeCitationKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MakeCitationKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("MakeCitationKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractFields_DropsReservedAndBlank(t *testing.T) {
	t.Parallel()

	fields, err := ExtractFields(map[string]string{
		"title":         "  On   Testing ",
		"author":        "Doe, J.",
		"citation_key":  "Doe 2020",
		"entry_type":    "book",
		"entry_type_id": "1",
		"tag_list":      "testing",
		"category_list": "CS",
		"publisher":     "   ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fields.Get("title"); got != "On Testing" {
		t.Errorf("title = %q, want %q", got, "On Testing")
	}
	if got := fields.Get("author"); got != "Doe, J." {
		t.Errorf("author = %q, want %q", got, "Doe, J.")
	}
	for _, reserved := range []string{"citation_key", "entry_type", "entry_type_id", "tag_list", "category_list", "publisher"} {
		if _, ok := fields[reserved]; ok {
			t.Errorf("key %q should have been dropped", reserved)
		}
	}
	if len(fields) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(fields))
	}
}

func TestExtractFields_YearBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		year     string
		wantYear int
		wantErr  bool
	}{
		{"zero", "0", 0, false},
		{"max", "9999", 9999, false},
		{"typical", "2020", 2020, false},
		{"over range", "10000", 0, true},
		{"negative is non-digit", "-1", 0, true},
		{"non-numeric", "199x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fields, err := ExtractFields(map[string]string{
				"title": "T",
				"year":  tt.year,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				if fields != nil {
					t.Error("no partial map may be returned on year failure")
				}
				return
			}
			if y, ok := fields.Year(); !ok || y != tt.wantYear {
				t.Errorf("Year() = %d, %v; want %d, true", y, ok, tt.wantYear)
			}
		})
	}
}

func TestExtractFields_EmptyYearIgnored(t *testing.T) {
	t.Parallel()

	fields, err := ExtractFields(map[string]string{"year": "  ", "title": "T"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := fields[FieldYear]; ok {
		t.Error("blank year should be dropped, not validated")
	}
}

func TestExtractNames(t *testing.T) {
	t.Parallel()

	got := ExtractNames([]string{" machine  learning ", "", "databases", "machine learning", "  "})
	want := []string{"machine learning", "databases"}

	if len(got) != len(want) {
		t.Fatalf("ExtractNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExtractNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
