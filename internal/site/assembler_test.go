package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogforge/internal/content"
	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/render"
	"git.home.luguber.info/inful/blogforge/internal/templates"
)

func testRegistry(t *testing.T) *templates.Registry {
	t.Helper()
	layouts := filepath.Join(t.TempDir(), "layouts")
	require.NoError(t, os.MkdirAll(layouts, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(layouts, "list.html"), []byte(
		"<h1>{{.Title}}</h1><ul>{{range .Pages}}<li><a href=\"{{.Permalink}}\">{{.Title}}</a></li>{{end}}</ul>"),
		0o644))
	reg, err := templates.LoadRegistry(layouts, "")
	require.NoError(t, err)
	return reg
}

func page(slug, title string, date time.Time, categories ...string) *render.Page {
	doc := content.Document{
		RelPath:    slug + ".md",
		Slug:       slug,
		Title:      title,
		Date:       date,
		Categories: categories,
	}
	return &render.Page{
		Doc:        doc,
		HTML:       []byte("<html>" + title + "</html>"),
		Permalink:  doc.Permalink(),
		OutputPath: doc.OutputPath(),
	}
}

func testPages() []*render.Page {
	// Already in pipeline order: date descending.
	return []*render.Page{
		page("zio-intro", "Intro to ZIO", time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC), "scala", "functional-effects"),
		page("monitoring-with-kamon", "Monitoring with kamon and prometheus", time.Date(2018, 3, 14, 0, 0, 0, 0, time.UTC), "monitoring"),
		page("about", "About", time.Time{}),
	}
}

func assemble(t *testing.T, pages []*render.Page) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "public")
	a := NewAssembler(testRegistry(t), templates.SiteMeta{Title: "Dev Notes", BaseURL: "https://example.com"},
		Options{OutputDir: out, ListLayout: "list", FeedSize: 20, Clean: true})
	require.NoError(t, a.Assemble(pages))
	return out
}

func readArtifact(t *testing.T, out string, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(append([]string{out}, parts...)...))
	require.NoError(t, err)
	return string(data)
}

func TestAssemble_WritesOneArtifactPerPage(t *testing.T) {
	out := assemble(t, testPages())

	require.Contains(t, readArtifact(t, out, "zio-intro", "index.html"), "Intro to ZIO")
	require.Contains(t, readArtifact(t, out, "monitoring-with-kamon", "index.html"), "Monitoring with kamon")
	require.Contains(t, readArtifact(t, out, "about", "index.html"), "About")
}

func TestAssemble_CategoryListings_CompleteAndExact(t *testing.T) {
	out := assemble(t, testPages())

	monitoring := readArtifact(t, out, "categories", "monitoring", "index.html")
	require.Contains(t, monitoring, "Monitoring with kamon and prometheus")
	require.NotContains(t, monitoring, "Intro to ZIO")
	require.NotContains(t, monitoring, "About")

	scala := readArtifact(t, out, "categories", "scala", "index.html")
	require.Contains(t, scala, "Intro to ZIO")

	effects := readArtifact(t, out, "categories", "functional-effects", "index.html")
	require.Contains(t, effects, "Intro to ZIO")
}

func TestGroupByCategory_PageListedOncePerDeclaredCategory(t *testing.T) {
	groups := GroupByCategory(testPages())
	require.Len(t, groups, 3)

	byName := map[string]CategoryGroup{}
	for _, g := range groups {
		byName[g.Name] = g
	}
	require.Len(t, byName["scala"].Pages, 1)
	require.Len(t, byName["functional-effects"].Pages, 1)
	require.Len(t, byName["monitoring"].Pages, 1)

	// The uncategorized page belongs to no listing.
	for _, g := range groups {
		for _, p := range g.Pages {
			require.NotEqual(t, "about", p.Doc.Slug)
		}
	}
}

func TestAssemble_Deterministic_AcrossRepeatedBuilds(t *testing.T) {
	out1 := assemble(t, testPages())
	out2 := assemble(t, testPages())

	for _, parts := range [][]string{
		{"index.html"},
		{"categories", "scala", "index.html"},
		{"feed.xml"},
		{"sitemap.xml"},
	} {
		require.Equal(t, readArtifact(t, out1, parts...), readArtifact(t, out2, parts...))
	}
}

func TestAssemble_IndexListsPagesInPipelineOrder(t *testing.T) {
	out := assemble(t, testPages())
	index := readArtifact(t, out, "index.html")

	first := indexOfSub(t, index, "Intro to ZIO")
	second := indexOfSub(t, index, "Monitoring with kamon")
	require.Less(t, first, second)
}

func TestAssemble_FeedAndSitemap_UseAbsoluteURLs(t *testing.T) {
	out := assemble(t, testPages())

	feed := readArtifact(t, out, "feed.xml")
	require.Contains(t, feed, "<link>https://example.com/monitoring-with-kamon/</link>")
	require.Contains(t, feed, "Wed, 14 Mar 2018")

	sitemap := readArtifact(t, out, "sitemap.xml")
	require.Contains(t, sitemap, "<loc>https://example.com/categories/monitoring/</loc>")
}

func TestAssemble_CopiesStaticAssets(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(static, "css"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(static, "css", "main.css"), []byte("body{}"), 0o644))

	out := filepath.Join(t.TempDir(), "public")
	a := NewAssembler(testRegistry(t), templates.SiteMeta{Title: "x"},
		Options{OutputDir: out, StaticDir: static, ListLayout: "list", FeedSize: 5})
	require.NoError(t, a.Assemble(nil))

	require.Equal(t, "body{}", readArtifact(t, out, "css", "main.css"))
}

func TestAssemble_MissingListLayout_FailsWithUnknownLayout(t *testing.T) {
	layouts := filepath.Join(t.TempDir(), "layouts")
	reg, err := templates.LoadRegistry(layouts, "")
	require.NoError(t, err)

	a := NewAssembler(reg, templates.SiteMeta{},
		Options{OutputDir: filepath.Join(t.TempDir(), "public"), ListLayout: "list", FeedSize: 5})
	err = a.Assemble(testPages())
	require.Error(t, err)
	require.True(t, bferrors.IsKind(err, bferrors.KindUnknownLayout))
}

func TestSlugify_NormalizesLabels(t *testing.T) {
	cases := map[string]string{
		"monitoring":         "monitoring",
		"Functional Effects": "functional-effects",
		"Café Talks":         "cafe-talks",
		"  spaced  out  ":    "spaced-out",
		"C++/Go":             "c-go",
		"日本語":                "日本語",
		"한국어":                "한국어",
		"Go 言語":              "go-言語",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugify_SymbolOnlyLabels_GetDistinctNonEmptySlugs(t *testing.T) {
	first := Slugify("→")
	second := Slugify("∑")
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	require.NotEqual(t, first, second)

	// Stable across calls, so repeated builds keep the same listing path.
	require.Equal(t, first, Slugify("→"))
}

func TestGroupByCategory_NonASCIILabels_StayDistinct(t *testing.T) {
	date := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	pages := []*render.Page{
		page("jp-post", "JP Post", date, "日本語"),
		page("kr-post", "KR Post", date.Add(-time.Hour), "한국어"),
	}

	groups := GroupByCategory(pages)
	require.Len(t, groups, 2)
	for _, g := range groups {
		require.NotEmpty(t, g.Slug)
		require.Len(t, g.Pages, 1)
	}
}

func indexOfSub(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in output", needle)
	return idx
}
