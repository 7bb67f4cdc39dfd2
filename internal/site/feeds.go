package site

import (
	"encoding/xml"
	"strings"
	"time"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
	"git.home.luguber.info/inful/blogforge/internal/render"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *Assembler) writeFeed(pages []*render.Page) error {
	items := make([]rssItem, 0, min(len(pages), a.feedSize))
	for _, page := range pages {
		if len(items) == a.feedSize {
			break
		}
		link := a.absoluteURL(page.Permalink)
		item := rssItem{
			Title:       page.Doc.Title,
			Link:        link,
			Description: page.Doc.Description,
			GUID:        link,
		}
		if !page.Doc.Date.IsZero() {
			item.PubDate = page.Doc.Date.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.site.Title,
			Link:        a.absoluteURL("/"),
			Description: a.site.Description,
			Items:       items,
		},
	}

	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return bferrors.Wrap(err, bferrors.KindInternal, "marshal RSS feed")
	}
	return a.writeArtifact("feed.xml", append([]byte(xml.Header), data...))
}

func (a *Assembler) writeSitemap(pages []*render.Page, groups []CategoryGroup) error {
	urls := []sitemapURL{{Loc: a.absoluteURL("/")}}
	for _, page := range pages {
		u := sitemapURL{Loc: a.absoluteURL(page.Permalink)}
		if !page.Doc.Date.IsZero() {
			u.LastMod = page.Doc.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, group := range groups {
		urls = append(urls, sitemapURL{Loc: a.absoluteURL("/categories/" + group.Slug + "/")})
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	data, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return bferrors.Wrap(err, bferrors.KindInternal, "marshal sitemap")
	}
	return a.writeArtifact("sitemap.xml", append([]byte(xml.Header), data...))
}

func (a *Assembler) absoluteURL(path string) string {
	base := strings.TrimRight(a.site.BaseURL, "/")
	return base + path
}
