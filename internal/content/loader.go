package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/frontmatter"
	"git.home.luguber.info/inful/blogforge/internal/logfields"
)

// datedFileName matches the conventional YYYY-MM-DD-slug.md file name.
var datedFileName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// Loader discovers content files under a source directory. Each Load call
// re-scans from scratch; the loader holds no state between builds.
type Loader struct {
	sourceDir     string
	defaultLayout string
	includeDrafts bool
	titleCaser    cases.Caser
}

// NewLoader creates a loader rooted at sourceDir. Documents without a
// layout field are assigned defaultLayout.
func NewLoader(sourceDir, defaultLayout string, includeDrafts bool) *Loader {
	return &Loader{
		sourceDir:     sourceDir,
		defaultLayout: defaultLayout,
		includeDrafts: includeDrafts,
		titleCaser:    cases.Title(language.English),
	}
}

// Load walks the source directory and parses every Markdown file.
//
// Per-document parse failures are collected and returned separately so the
// caller can apply its fail-fast or fail-soft policy; err is reserved for
// walk-level problems (unreadable source tree).
func (l *Loader) Load() (docs []Document, failures []error, err error) {
	if _, statErr := os.Stat(l.sourceDir); os.IsNotExist(statErr) {
		return nil, nil, bferrors.FileSystemError("scan source directory",
			fmt.Errorf("content directory not found: %s", l.sourceDir))
	}

	walkErr := filepath.WalkDir(l.sourceDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			// Skip hidden directories such as .git or editor state.
			if strings.HasPrefix(d.Name(), ".") && path != l.sourceDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		doc, parseErr := l.parseFile(path)
		if parseErr != nil {
			failures = append(failures, parseErr)
			return nil
		}
		if doc.Draft && !l.includeDrafts {
			slog.Debug("Skipping draft document", logfields.Path(doc.RelPath))
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, failures, bferrors.FileSystemError("scan source directory", walkErr)
	}

	// Deterministic order regardless of filesystem enumeration.
	SortDocuments(docs)

	slog.Debug("Content discovery completed",
		logfields.Pages(len(docs)), logfields.Failures(len(failures)))
	return docs, failures, nil
}

func (l *Loader) parseFile(path string) (Document, error) {
	relPath, err := filepath.Rel(l.sourceDir, path)
	if err != nil {
		relPath = path
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the configured source dir
	if err != nil {
		return Document{}, bferrors.FileSystemError("read content file", err).WithPath(relPath)
	}

	header, body, _, _, err := frontmatter.Split(raw)
	if err != nil {
		return Document{}, bferrors.MalformedHeader(relPath, err)
	}

	fields, err := frontmatter.Parse(header)
	if err != nil {
		return Document{}, bferrors.MalformedHeader(relPath, err)
	}

	doc := Document{
		SourcePath: path,
		RelPath:    relPath,
		Layout:     l.defaultLayout,
		Fields:     fields,
		Body:       string(body),
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc.Slug = name
	if m := datedFileName.FindStringSubmatch(name); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			doc.Date = t
			doc.Slug = m[2]
		}
	}

	if layout, ok := fields["layout"].(string); ok && layout != "" {
		doc.Layout = layout
	}
	if title, ok := fields["title"].(string); ok && title != "" {
		doc.Title = title
	} else {
		// Derive a presentable title from the slug.
		doc.Title = l.titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(doc.Slug))
	}
	if desc, ok := fields["description"].(string); ok {
		doc.Description = desc
	}
	if draft, ok := fields["draft"].(bool); ok {
		doc.Draft = draft
	}
	doc.Categories = normalizeCategories(fields["categories"])

	if rawDate, ok := fields["date"].(string); ok && rawDate != "" {
		t, err := parseDate(rawDate)
		if err != nil {
			return Document{}, bferrors.MalformedHeader(relPath, err)
		}
		doc.Date = t
	} else if t, ok := fields["date"].(time.Time); ok {
		// yaml.v3 decodes unquoted ISO dates directly.
		doc.Date = t
	}

	return doc, nil
}
