// Package record defines the canonical and import-ready record shapes and
// the normalization step between them.
package record

import (
	"github.com/openstudydata/ddiwalk/extract"
)

// Canonical is the raw result of evaluating every mapped field against one
// document. It contains exactly the keys declared by the mapping profile.
type Canonical map[string]extract.Value

// Text returns the scalar value for a field, or "".
func (c Canonical) Text(field string) string {
	return c[field].Text()
}

// Tag is a single catalog tag.
type Tag struct {
	Name string `json:"name"`
}

// Resource describes a downloadable artifact attached to a record.
type Resource struct {
	URL    string `json:"url"`
	Name   string `json:"name,omitempty"`
	Format string `json:"format,omitempty"`
}

// Record is the import-ready record in the shape the catalog API accepts.
// Extras carries the study-specific extension fields.
type Record struct {
	ID              string            `json:"id,omitempty"`
	Name            string            `json:"name"`
	Title           string            `json:"title"`
	URL             string            `json:"url,omitempty"`
	Author          string            `json:"author"`
	AuthorEmail     string            `json:"author_email"`
	Maintainer      string            `json:"maintainer"`
	MaintainerEmail string            `json:"maintainer_email"`
	LicenseID       string            `json:"license_id,omitempty"`
	Version         string            `json:"version,omitempty"`
	Notes           string            `json:"notes"`
	Tags            []Tag             `json:"tags"`
	Resources       []Resource        `json:"resources,omitempty"`
	Extras          map[string]string `json:"extras,omitempty"`
}

// ExtraFields lists the canonical extension fields carried in Extras.
var ExtraFields = []string{
	"abbreviation",
	"study_type",
	"series_info",
	"id_number",
	"description",
	"production_type",
	"abstract",
	"kind_of_data",
	"unit_of_analysis",
	"description_of_scope",
	"country",
	"geographic_coverage",
	"time_period_covered",
	"universe",
	"primary_investigator",
	"other_producers",
	"funding",
	"sampling_procedure",
	"data_collection_dates",
	"access_authority",
	"citation_requirement",
	"contact_persons",
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Tags = append([]Tag(nil), r.Tags...)
	out.Resources = append([]Resource(nil), r.Resources...)
	if r.Extras != nil {
		out.Extras = make(map[string]string, len(r.Extras))
		for k, v := range r.Extras {
			out.Extras[k] = v
		}
	}
	return &out
}
