package doi

import (
	"strconv"
	"strings"
)

// apiEnvelope is the Crossref response wrapper.
type apiEnvelope struct {
	Message apiWork `json:"message"`
}

// apiWork is the subset of the Crossref work record we map to citation
// fields.
type apiWork struct {
	Title          []string    `json:"title"`
	Author         []apiAuthor `json:"author"`
	ContainerTitle []string    `json:"container-title"`
	Publisher      string      `json:"publisher"`
	Page           string      `json:"page"`
	Volume         string      `json:"volume"`
	Issue          string      `json:"issue"`
	PublishedPrint apiDate     `json:"published-print"`
	Issued         apiDate     `json:"issued"`
}

type apiAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type apiDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d apiDate) year() (int, bool) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0, false
	}
	return d.DateParts[0][0], true
}

// mapAPIResponse flattens a Crossref work into citation field values.
// Absent fields are simply omitted from the map.
func mapAPIResponse(work apiWork) map[string]string {
	fields := make(map[string]string)

	if len(work.Title) > 0 && work.Title[0] != "" {
		fields["title"] = work.Title[0]
	}
	if author := formatAuthors(work.Author); author != "" {
		fields["author"] = author
	}
	if len(work.ContainerTitle) > 0 && work.ContainerTitle[0] != "" {
		fields["journaltitle"] = work.ContainerTitle[0]
	}
	if work.Publisher != "" {
		fields["publisher"] = work.Publisher
	}
	if work.Page != "" {
		fields["pages"] = work.Page
	}
	if work.Volume != "" {
		fields["volume"] = work.Volume
	}
	if work.Issue != "" {
		fields["number"] = work.Issue
	}

	if year, ok := work.PublishedPrint.year(); ok {
		fields["year"] = strconv.Itoa(year)
	} else if year, ok := work.Issued.year(); ok {
		fields["year"] = strconv.Itoa(year)
	}

	return fields
}

// formatAuthors renders the author list in BibTeX convention:
// "Family, Given and Family, Given".
func formatAuthors(authors []apiAuthor) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		switch {
		case a.Family != "" && a.Given != "":
			names = append(names, a.Family+", "+a.Given)
		case a.Family != "":
			names = append(names, a.Family)
		case a.Given != "":
			names = append(names, a.Given)
		}
	}
	return strings.Join(names, " and ")
}
