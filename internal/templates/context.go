package templates

import (
	htmltemplate "html/template"
	"time"
)

// SiteMeta is the site-wide data every layout can reach via .Site.
type SiteMeta struct {
	Title       string
	BaseURL     string
	Description string
}

// PageContext is the data a page layout executes with.
type PageContext struct {
	Site        SiteMeta
	Title       string
	Description string
	Date        time.Time
	Categories  []string
	Permalink   string
	Content     htmltemplate.HTML
	Params      map[string]any // full front matter for custom layout fields
}

// PageRef is a lightweight reference to a rendered page, used in listings.
type PageRef struct {
	Title       string
	Description string
	Date        time.Time
	Categories  []string
	Permalink   string
}

// ListContext is the data a listing layout (category or index) executes with.
type ListContext struct {
	Site     SiteMeta
	Title    string
	Category string // empty on the front index
	Pages    []PageRef
}
