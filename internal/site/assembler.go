// Package site aggregates rendered pages into the final output tree:
// one artifact per page, one listing per category, a front index, feeds,
// and static assets.
package site

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/logfields"
	"git.home.luguber.info/inful/blogforge/internal/render"
	"git.home.luguber.info/inful/blogforge/internal/templates"
)

// Assembler writes the site. It is the synchronization barrier of the
// pipeline: it needs the complete page set before grouping.
type Assembler struct {
	outputDir  string
	staticDir  string
	reg        *templates.Registry
	site       templates.SiteMeta
	listLayout string
	feedSize   int
	clean      bool
}

// Options configures an Assembler.
type Options struct {
	OutputDir  string
	StaticDir  string // copied verbatim; empty or missing dir is skipped
	ListLayout string // layout used for category listings and the front index
	FeedSize   int    // max items in feed.xml
	Clean      bool   // remove the output directory before writing
}

// NewAssembler creates an assembler for one build.
func NewAssembler(reg *templates.Registry, site templates.SiteMeta, opts Options) *Assembler {
	return &Assembler{
		outputDir:  opts.OutputDir,
		staticDir:  opts.StaticDir,
		reg:        reg,
		site:       site,
		listLayout: opts.ListLayout,
		feedSize:   opts.FeedSize,
		clean:      opts.Clean,
	}
}

// Assemble writes every page plus the derived artifacts.
//
// Pages are expected in deterministic order (date descending, path
// ascending); grouping preserves that order inside each category listing.
func (a *Assembler) Assemble(pages []*render.Page) error {
	if a.clean {
		if err := os.RemoveAll(a.outputDir); err != nil {
			return bferrors.FileSystemError("clean output directory", err)
		}
	}
	if err := os.MkdirAll(a.outputDir, 0o750); err != nil {
		return bferrors.FileSystemError("create output directory", err)
	}

	if err := a.copyStatic(); err != nil {
		return err
	}

	for _, page := range pages {
		if err := a.writeArtifact(page.OutputPath, page.HTML); err != nil {
			return err
		}
	}

	groups := GroupByCategory(pages)
	for _, group := range groups {
		if err := a.writeListing(group); err != nil {
			return err
		}
	}

	if err := a.writeIndex(pages); err != nil {
		return err
	}
	if err := a.writeFeed(pages); err != nil {
		return err
	}
	if err := a.writeSitemap(pages, groups); err != nil {
		return err
	}

	slog.Info("Site assembled",
		logfields.Output(a.outputDir),
		logfields.Pages(len(pages)),
		slog.Int("categories", len(groups)))
	return nil
}

// CategoryGroup is one category and its member pages, listing order.
type CategoryGroup struct {
	Name  string // category label as declared
	Slug  string
	Pages []*render.Page
}

// GroupByCategory groups pages by their declared categories. A page with
// categories {A, B} appears in both groups exactly once; a page appears in
// no group it did not declare. Groups come back sorted by slug.
func GroupByCategory(pages []*render.Page) []CategoryGroup {
	bySlug := make(map[string]*CategoryGroup)
	for _, page := range pages {
		for _, cat := range page.Doc.Categories {
			slug := Slugify(cat)
			group, ok := bySlug[slug]
			if !ok {
				group = &CategoryGroup{Name: cat, Slug: slug}
				bySlug[slug] = group
			}
			group.Pages = append(group.Pages, page)
		}
	}

	slugs := make([]string, 0, len(bySlug))
	for slug := range bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	groups := make([]CategoryGroup, 0, len(slugs))
	for _, slug := range slugs {
		groups = append(groups, *bySlug[slug])
	}
	return groups
}

func (a *Assembler) writeListing(group CategoryGroup) error {
	layout, err := a.reg.Layout(a.listLayout)
	if err != nil {
		return err
	}

	ctx := templates.ListContext{
		Site:     a.site,
		Title:    group.Name,
		Category: group.Name,
		Pages:    pageRefs(group.Pages),
	}

	var sb strings.Builder
	if err := layout.Execute(&sb, ctx); err != nil {
		return bferrors.Wrap(err, bferrors.KindRender, "execute listing layout").
			WithContext("category", group.Name)
	}

	return a.writeArtifact(filepath.Join("categories", group.Slug, "index.html"), []byte(sb.String()))
}

func (a *Assembler) writeIndex(pages []*render.Page) error {
	// A dedicated home layout wins; otherwise the index is a plain listing.
	layoutName := a.listLayout
	if a.reg.HasLayout("home") {
		layoutName = "home"
	}
	layout, err := a.reg.Layout(layoutName)
	if err != nil {
		return err
	}

	ctx := templates.ListContext{
		Site:  a.site,
		Title: a.site.Title,
		Pages: pageRefs(pages),
	}

	var sb strings.Builder
	if err := layout.Execute(&sb, ctx); err != nil {
		return bferrors.Wrap(err, bferrors.KindRender, "execute index layout")
	}
	return a.writeArtifact("index.html", []byte(sb.String()))
}

func (a *Assembler) writeArtifact(relPath string, data []byte) error {
	outPath := filepath.Join(a.outputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return bferrors.FileSystemError("create artifact directory", err).WithPath(relPath)
	}
	// #nosec G306 -- generated site artifacts are public
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return bferrors.FileSystemError("write artifact", err).WithPath(relPath)
	}
	return nil
}

func (a *Assembler) copyStatic() error {
	if a.staticDir == "" {
		return nil
	}
	if _, err := os.Stat(a.staticDir); os.IsNotExist(err) {
		return nil
	}

	err := filepath.Walk(a.staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(a.staticDir, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(a.outputDir, relPath)

		if info.IsDir() {
			return os.MkdirAll(dstPath, 0o750)
		}
		data, err := os.ReadFile(path) // #nosec G304 -- path from walking the configured static dir
		if err != nil {
			return fmt.Errorf("read static file %s: %w", relPath, err)
		}
		// #nosec G306 -- static site assets are public
		return os.WriteFile(dstPath, data, 0o644)
	})
	if err != nil {
		return bferrors.FileSystemError("copy static assets", err)
	}
	return nil
}

func pageRefs(pages []*render.Page) []templates.PageRef {
	refs := make([]templates.PageRef, 0, len(pages))
	for _, page := range pages {
		refs = append(refs, page.Ref())
	}
	return refs
}

// Slugify normalizes a label into a lowercase path slug. Accented letters
// are decomposed and their combining marks dropped so "Café" and "Cafe"
// collapse to the same listing; letters from non-Latin scripts are kept
// as-is. Distinct labels never collapse to the same empty slug: a label
// with no letters or digits at all gets a stable hash slug instead.
func Slugify(s string) string {
	s = norm.NFKD.String(strings.ToLower(strings.TrimSpace(s)))

	var sb strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
			lastDash = false
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition
		case !lastDash:
			sb.WriteRune('-')
			lastDash = true
		}
	}

	slug := strings.TrimRight(sb.String(), "-")
	if slug == "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(s))
		slug = fmt.Sprintf("%08x", h.Sum32())
	}
	return slug
}
