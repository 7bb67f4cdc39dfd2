// Package render turns a content.Document into a finished page.
//
// Rendering is a pure function of (document, registry); documents never
// depend on one another, so callers may render in any order or in parallel.
package render

import (
	"bytes"
	"errors"
	htmltemplate "html/template"

	"git.home.luguber.info/inful/blogforge/internal/content"
	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/markdown"
	"git.home.luguber.info/inful/blogforge/internal/templates"
)

// Page is the rendered output for one document, owned by the site assembler
// until written out.
type Page struct {
	Doc        content.Document
	HTML       []byte // final markup, layout applied
	Permalink  string
	OutputPath string // relative to the output directory
}

// Renderer renders documents against an immutable template registry.
type Renderer struct {
	reg  *templates.Registry
	site templates.SiteMeta
}

// New creates a renderer. The registry must be fully populated; it is only
// read from here on.
func New(reg *templates.Registry, site templates.SiteMeta) *Renderer {
	return &Renderer{reg: reg, site: site}
}

// Render produces a Page from a document.
//
// Steps: resolve include directives in the body, convert the Markdown to
// HTML, then wrap it in the document's layout. Template resolver errors
// propagate unchanged apart from being tagged with the document path; there
// is no local recovery and no layout fallback.
func (r *Renderer) Render(doc content.Document) (*Page, error) {
	body, err := resolveDirectives(doc.Body, r.reg)
	if err != nil {
		return nil, tagPath(err, doc.RelPath)
	}

	inner, err := markdown.ToHTML([]byte(body))
	if err != nil {
		return nil, bferrors.RenderFailed(doc.RelPath, err)
	}

	layout, err := r.reg.Layout(doc.Layout)
	if err != nil {
		return nil, tagPath(err, doc.RelPath)
	}

	ctx := templates.PageContext{
		Site:        r.site,
		Title:       doc.Title,
		Description: doc.Description,
		Date:        doc.Date,
		Categories:  doc.Categories,
		Permalink:   doc.Permalink(),
		Content:     htmltemplate.HTML(inner), // #nosec G203 -- output of our own markdown conversion
		Params:      doc.Fields,
	}

	var buf bytes.Buffer
	if err := layout.Execute(&buf, ctx); err != nil {
		return nil, bferrors.RenderFailed(doc.RelPath, err)
	}

	return &Page{
		Doc:        doc,
		HTML:       buf.Bytes(),
		Permalink:  doc.Permalink(),
		OutputPath: doc.OutputPath(),
	}, nil
}

// Ref returns the listing reference for a rendered page.
func (p *Page) Ref() templates.PageRef {
	return templates.PageRef{
		Title:       p.Doc.Title,
		Description: p.Doc.Description,
		Date:        p.Doc.Date,
		Categories:  p.Doc.Categories,
		Permalink:   p.Permalink,
	}
}

// tagPath attaches the document path to a structured error without
// disturbing its kind.
func tagPath(err error, path string) error {
	var be *bferrors.BuildError
	if errors.As(err, &be) {
		return be.WithPath(path)
	}
	return bferrors.RenderFailed(path, err)
}
