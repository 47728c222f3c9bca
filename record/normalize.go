package record

import (
	"strings"

	"github.com/openstudydata/ddiwalk/extract"
	"github.com/openstudydata/ddiwalk/helpers"
)

// PathRewrite substitutes one path segment of the source URL for another
// to derive a catalog-entry URL, e.g. "/ddibrowser/" -> "/catalog/".
type PathRewrite struct {
	Old string
	New string
}

// Options controls source-derived normalization policy. The zero value
// drops an empty url field and assigns no license.
type Options struct {
	// SourceURL is set when the document was fetched from a URL.
	SourceURL string

	// SourceURLFallback substitutes SourceURL for an empty url field
	// instead of dropping it.
	SourceURLFallback bool

	// License overrides the extracted license for this call.
	License string

	// DefaultLicense applies when neither an override nor an extracted
	// license is present.
	DefaultLicense string

	// CatalogRewrite, when set and matching, derives a second resource
	// pointing at the catalog entry for the source document.
	CatalogRewrite *PathRewrite
}

// Normalize converts a canonical record into an import-ready one. It never
// fails: missing inputs degrade to empty fields and lists.
func Normalize(c Canonical, opts Options) *Record {
	r := &Record{
		ID:              c.Text("id"),
		Name:            c.Text("name"),
		Title:           c.Text("title"),
		URL:             c.Text("url"),
		Author:          c.Text("author"),
		AuthorEmail:     c.Text("author_email"),
		Maintainer:      c.Text("maintainer"),
		MaintainerEmail: c.Text("maintainer_email"),
		LicenseID:       c.Text("license_id"),
		Version:         c.Text("version"),
		Notes:           c.Text("notes"),
		Extras:          make(map[string]string, len(ExtraFields)),
	}

	// The slug is the record's stable identifier: the name field when
	// present, the title otherwise.
	if r.Name != "" {
		r.Name = helpers.Slug(r.Name)
	} else {
		r.Name = helpers.Slug(r.Title)
	}

	if r.URL == "" && opts.SourceURLFallback {
		r.URL = opts.SourceURL
	}

	switch {
	case opts.License != "":
		r.LicenseID = opts.License
	case r.LicenseID == "":
		r.LicenseID = opts.DefaultLicense
	}

	r.Tags = normalizeTags(c["tags"].Names())

	if opts.SourceURL != "" {
		r.Resources = append(r.Resources, Resource{
			URL:    opts.SourceURL,
			Name:   r.Title,
			Format: "xml",
		})
		if entry := rewriteURL(opts.SourceURL, opts.CatalogRewrite); entry != "" {
			r.Resources = append(r.Resources, Resource{
				URL:  entry,
				Name: "Catalog entry",
			})
		}
	}

	for _, field := range ExtraFields {
		r.Extras[field] = c.Text(field)
	}

	return r
}

// normalizeTags slugs every tag name, caps it at the catalog's length
// limit, and removes empties and duplicates, preserving first-seen order.
func normalizeTags(names []extract.Name) []Tag {
	seen := make(map[string]bool, len(names))
	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		name := helpers.SlugMax(n.Name, helpers.MaxTagLength)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, Tag{Name: name})
	}
	return tags
}

func rewriteURL(sourceURL string, rw *PathRewrite) string {
	if rw == nil || rw.Old == "" || !strings.Contains(sourceURL, rw.Old) {
		return ""
	}
	return strings.Replace(sourceURL, rw.Old, rw.New, 1)
}
