package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogforge/internal/content"
	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/templates"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	root := t.TempDir()
	layouts := filepath.Join(root, "layouts")
	includes := filepath.Join(root, "includes")

	writeFile(t, layouts, "post.html",
		"<html><head><title>{{.Title}} | {{.Site.Title}}</title></head><body>{{.Content}}</body></html>")
	writeFile(t, includes, "youtube.html",
		`<div class="video-embed"><iframe src="https://www.youtube.com/embed/{{.id}}" allowfullscreen></iframe></div>`)
	writeFile(t, includes, "callout.html",
		`<aside class="{{.kind}}">{{.text}}</aside>`)

	reg, err := templates.LoadRegistry(layouts, includes)
	require.NoError(t, err)
	return New(reg, templates.SiteMeta{Title: "Dev Notes"})
}

func postDoc(body string) content.Document {
	return content.Document{
		RelPath:    "2018-03-14-monitoring-with-kamon.md",
		Slug:       "monitoring-with-kamon",
		Layout:     "post",
		Title:      "Monitoring with kamon and prometheus",
		Categories: []string{"monitoring"},
		Body:       body,
	}
}

func TestRender_YoutubeDirective_SubstitutesIdentifier(t *testing.T) {
	r := testRenderer(t)

	page, err := r.Render(postDoc("Intro text.\n\n{{< youtube id=\"fVw_8BOTF3s\" >}}\n\nOutro.\n"))
	require.NoError(t, err)
	require.Contains(t, string(page.HTML), "https://www.youtube.com/embed/fVw_8BOTF3s")
	require.Contains(t, string(page.HTML), "<title>Monitoring with kamon and prometheus | Dev Notes</title>")
	require.Equal(t, "/monitoring-with-kamon/", page.Permalink)
	require.Equal(t, "monitoring-with-kamon/index.html", page.OutputPath)
}

func TestRender_MultipleDirectives_ResolvedLeftToRight(t *testing.T) {
	r := testRenderer(t)

	body := `{{< callout kind="a" text="first" >}} and {{< callout kind="b" text="second" >}}` + "\n"
	page, err := r.Render(postDoc(body))
	require.NoError(t, err)

	html := string(page.HTML)
	require.Contains(t, html, `<aside class="a">first</aside>`)
	require.Contains(t, html, `<aside class="b">second</aside>`)
	require.Less(t,
		// first directive's output must precede the second's
		indexOf(t, html, "first"), indexOf(t, html, "second"))
}

func TestRender_DirectiveInFencedCodeBlock_LeftUntouched(t *testing.T) {
	r := testRenderer(t)

	body := "```\n{{< youtube id=\"abc\" >}}\n```\n"
	page, err := r.Render(postDoc(body))
	require.NoError(t, err)
	require.NotContains(t, string(page.HTML), "youtube.com/embed/abc")
	require.Contains(t, string(page.HTML), "youtube")
}

func TestRender_ResolvedIncludeNotRescanned(t *testing.T) {
	root := t.TempDir()
	layouts := filepath.Join(root, "layouts")
	includes := filepath.Join(root, "includes")
	writeFile(t, layouts, "post.html", "{{.Content}}")
	// A fragment that itself emits directive syntax; it must not recurse.
	writeFile(t, includes, "meta.html", `directive looks like {{"{{<"}} youtube id="x" {{">}}"}}`)

	reg, err := templates.LoadRegistry(layouts, includes)
	require.NoError(t, err)
	r := New(reg, templates.SiteMeta{})

	page, err := r.Render(postDoc("{{< meta >}}\n"))
	require.NoError(t, err)
	require.Contains(t, string(page.HTML), "youtube")
	require.NotContains(t, string(page.HTML), "youtube.com/embed")
}

func TestRender_UnknownInclude_PropagatesWithPath(t *testing.T) {
	r := testRenderer(t)

	_, err := r.Render(postDoc("{{< vimeo id=\"123\" >}}\n"))
	require.Error(t, err)
	require.True(t, bferrors.IsKind(err, bferrors.KindUnknownInclude))

	var be *bferrors.BuildError
	require.ErrorAs(t, err, &be)
	require.Equal(t, "2018-03-14-monitoring-with-kamon.md", be.Path())
}

func TestRender_MissingParameter_Propagates(t *testing.T) {
	r := testRenderer(t)

	_, err := r.Render(postDoc("{{< callout kind=\"warning\" >}}\n"))
	require.Error(t, err)
	require.True(t, bferrors.IsKind(err, bferrors.KindMissingParameter))
}

func TestRender_UnknownLayout_NeverFallsBack(t *testing.T) {
	r := testRenderer(t)

	doc := postDoc("plain body\n")
	doc.Layout = "missing-layout"
	_, err := r.Render(doc)
	require.Error(t, err)
	require.True(t, bferrors.IsKind(err, bferrors.KindUnknownLayout))
}

func TestRender_MarkdownBody_ConvertedToHTML(t *testing.T) {
	r := testRenderer(t)

	page, err := r.Render(postDoc("## Section\n\nSome *emphasis*.\n"))
	require.NoError(t, err)
	require.Contains(t, string(page.HTML), `<h2 id="section">Section</h2>`)
	require.Contains(t, string(page.HTML), "<em>emphasis</em>")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in output", needle)
	return idx
}
