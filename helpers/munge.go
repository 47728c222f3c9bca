// Package helpers provides text munging shared by extraction and
// normalization.
package helpers

import (
	"strings"

	"github.com/gosimple/slug"
)

// MaxTagLength is the longest tag name the catalog accepts.
const MaxTagLength = 100

// Slug lowercases s and collapses runs of non-alphanumeric characters to a
// single dash. Slugging an already-slugged string is a no-op.
func Slug(s string) string {
	return slug.Make(s)
}

// SlugMax slugs s and caps the result at max characters, trimming any
// dangling dash left by the cut.
func SlugMax(s string, max int) string {
	out := slug.Make(s)
	if max > 0 && len(out) > max {
		out = strings.TrimRight(out[:max], "-")
	}
	return out
}
