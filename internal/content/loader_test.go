package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ParsesHeaderFieldsAndBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2018-03-14-monitoring-with-kamon.md",
		"---\nlayout: post\ntitle: \"Monitoring with kamon and prometheus\"\ncategories: monitoring\n---\nBody text.\n")

	docs, failures, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, docs, 1)

	doc := docs[0]
	require.Equal(t, "post", doc.Layout)
	require.Equal(t, "Monitoring with kamon and prometheus", doc.Title)
	require.Equal(t, []string{"monitoring"}, doc.Categories)
	require.Equal(t, "monitoring-with-kamon", doc.Slug)
	require.Equal(t, time.Date(2018, 3, 14, 0, 0, 0, 0, time.UTC), doc.Date)
	require.Equal(t, "Body text.\n", doc.Body)
	require.Equal(t, "/monitoring-with-kamon/", doc.Permalink())
}

func TestLoad_UnclosedHeader_ReportsMalformedHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.md", "---\nlayout: post\nno closing marker\n")

	docs, failures, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Empty(t, docs)
	require.Len(t, failures, 1)
	require.True(t, bferrors.IsKind(failures[0], bferrors.KindMalformedHeader))
}

func TestLoad_NonMappingHeader_ReportsMalformedHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scalar.md", "---\njust a scalar\n---\nbody\n")

	_, failures, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.True(t, bferrors.IsKind(failures[0], bferrors.KindMalformedHeader))
}

func TestLoad_CategoriesList_Normalized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "multi.md",
		"---\nlayout: post\ncategories:\n  - scala\n  - functional-effects\n  - scala\n---\nbody\n")

	docs, failures, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, []string{"scala", "functional-effects"}, docs[0].Categories)
}

func TestLoad_NonASCIICategories_Preserved(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "intl.md",
		"---\nlayout: post\ncategories: 日本語 한국어\n---\nbody\n")

	docs, failures, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, []string{"日本語", "한국어"}, docs[0].Categories)
}

func TestLoad_MissingLayout_UsesDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.md", "---\ntitle: Plain\n---\nbody\n")

	docs, _, err := NewLoader(dir, "page", false).Load()
	require.NoError(t, err)
	require.Equal(t, "page", docs[0].Layout)
}

func TestLoad_MissingTitle_DerivedFromSlug(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2019-01-02-effects-for-the-masses.md", "---\nlayout: post\n---\nbody\n")

	docs, _, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Equal(t, "Effects For The Masses", docs[0].Title)
}

func TestLoad_Drafts_SkippedUnlessIncluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wip.md", "---\nlayout: post\ndraft: true\n---\nbody\n")

	docs, _, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Empty(t, docs)

	docs, _, err = NewLoader(dir, "post", true).Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestLoad_OrdersByDateDescThenPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2018-01-01-older.md", "---\nlayout: post\n---\nbody\n")
	writeFile(t, dir, "2019-01-01-newer.md", "---\nlayout: post\n---\nbody\n")
	writeFile(t, dir, "about.md", "---\nlayout: page\ntitle: About\n---\nbody\n")

	docs, _, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "newer", docs[0].Slug)
	require.Equal(t, "older", docs[1].Slug)
	require.Equal(t, "about", docs[2].Slug)
}

func TestLoad_InvalidDate_ReportsMalformedHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad-date.md", "---\nlayout: post\ndate: \"not a date\"\n---\nbody\n")

	_, failures, err := NewLoader(dir, "post", false).Load()
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.True(t, bferrors.IsKind(failures[0], bferrors.KindMalformedHeader))
}

func TestLoad_MissingSourceDir_ReturnsError(t *testing.T) {
	_, _, err := NewLoader(filepath.Join(t.TempDir(), "nope"), "post", false).Load()
	require.Error(t, err)
}
