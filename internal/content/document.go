// Package content discovers Markdown source files and parses them into
// immutable Document values for the render pipeline.
package content

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Document represents one parsed content file. It is created by the Loader
// when the file is discovered and not modified afterwards.
type Document struct {
	SourcePath  string // absolute path to the source file
	RelPath     string // path relative to the content directory
	Slug        string // URL slug derived from the file name
	Layout      string // exactly one layout per document
	Title       string
	Description string
	Categories  []string // deduplicated, declaration order preserved
	Date        time.Time
	Draft       bool
	Fields      map[string]any // full front matter, for layout params
	Body        string         // raw Markdown body
}

// Permalink returns the site-relative URL for the document.
func (d Document) Permalink() string {
	return "/" + d.Slug + "/"
}

// OutputPath returns the artifact path relative to the output directory.
func (d Document) OutputPath() string {
	return d.Slug + "/index.html"
}

// dateFormats accepted for a front matter `date` field.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}

// normalizeCategories accepts the two front matter shapes seen in the wild:
// a YAML list, or a single space/comma separated string.
func normalizeCategories(v any) []string {
	var raw []string
	switch vv := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.FieldsFunc(vv, func(r rune) bool { return r == ' ' || r == ',' })
	case []any:
		for _, item := range vv {
			raw = append(raw, fmt.Sprint(item))
		}
	case []string:
		raw = vv
	default:
		raw = []string{fmt.Sprint(vv)}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// SortDocuments orders documents by date descending with source path
// ascending as the tiebreak. Filesystem enumeration order never leaks into
// output ordering.
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.After(docs[j].Date)
		}
		return docs[i].RelPath < docs[j].RelPath
	})
}
