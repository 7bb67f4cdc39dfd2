// Package linkcheck verifies that internal links in a generated site resolve
// to files that actually exist in the output tree.
package linkcheck

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
)

// Issue describes a single broken internal reference.
type Issue struct {
	File string // output-relative path of the document containing the link
	URL  string // the href/src value as written
	Tag  string // element the reference came from (a, img, link, script)
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: <%s> %s", i.File, i.Tag, i.URL)
}

// Check walks every .html file under outputDir and returns an Issue for each
// internal href/src whose target does not exist. External URLs (with a scheme
// or host) and fragments are ignored.
func Check(outputDir string) ([]Issue, error) {
	var issues []Issue

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		found, err := checkFile(outputDir, filepath.ToSlash(rel), p)
		if err != nil {
			return err
		}
		issues = append(issues, found...)
		return nil
	})
	if err != nil {
		return nil, bferrors.FileSystemError("linkcheck", err)
	}
	return issues, nil
}

func checkFile(outputDir, rel, fullPath string) ([]Issue, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}

	var issues []Issue
	for ref := range collectRefs(doc) {
		target, ok := internalTarget(ref.value)
		if !ok {
			continue
		}
		if !targetExists(outputDir, rel, target) {
			issues = append(issues, Issue{File: rel, URL: ref.value, Tag: ref.tag})
		}
	}
	return issues, nil
}

type reference struct {
	tag   string
	value string
}

// collectRefs walks the parsed tree and yields href/src attributes from
// elements that point at other resources.
func collectRefs(doc *html.Node) map[reference]struct{} {
	refs := map[reference]struct{}{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if v, ok := attr(n, "href"); ok {
					refs[reference{tag: n.Data, value: v}] = struct{}{}
				}
			case "img", "script":
				if v, ok := attr(n, "src"); ok {
					refs[reference{tag: n.Data, value: v}] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// internalTarget reports whether raw is a site-internal reference and returns
// the path portion to verify.
func internalTarget(raw string) (string, bool) {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		// Unparseable links are checked as literal paths.
		return raw, true
	}
	if u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// targetExists resolves target relative to the document (or the site root for
// absolute paths) and accepts either a file or a directory with index.html.
func targetExists(outputDir, fromRel, target string) bool {
	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = path.Clean(target)
	} else {
		resolved = path.Join(path.Dir(fromRel), target)
	}
	resolved = strings.TrimPrefix(resolved, "/")

	full := filepath.Join(outputDir, filepath.FromSlash(resolved))
	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			return true
		}
		_, err := os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return false
}
