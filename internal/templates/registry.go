// Package templates holds the immutable layout and include registry.
//
// The registry is populated once at startup and read-only afterwards, which
// makes concurrent lookups safe without synchronization.
package templates

import (
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	texttemplate "text/template"
	"text/template/parse"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
)

// include is a parsed fragment plus the parameters its placeholders require.
type include struct {
	tpl    *texttemplate.Template
	params []string
}

// Registry resolves layout names to templates and include names to fragments.
type Registry struct {
	layouts  map[string]*htmltemplate.Template
	includes map[string]*include
}

// LoadRegistry builds a registry from a layouts directory and an includes
// directory. Layout templates are named after their file (sans .html);
// files under <layouts>/partials are parsed into every layout as associated
// templates. Either directory may be absent.
func LoadRegistry(layoutsDir, includesDir string) (*Registry, error) {
	reg := &Registry{
		layouts:  make(map[string]*htmltemplate.Template),
		includes: make(map[string]*include),
	}

	if err := reg.loadLayouts(layoutsDir); err != nil {
		return nil, err
	}
	if err := reg.loadIncludes(includesDir); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) loadLayouts(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	partialsDir := filepath.Join(dir, "partials")
	var partials []string
	if entries, err := os.ReadDir(partialsDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
				partials = append(partials, filepath.Join(partialsDir, e.Name()))
			}
		}
		sort.Strings(partials)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return bferrors.FileSystemError("read layouts directory", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".html")

		raw, err := os.ReadFile(filepath.Join(dir, e.Name())) // #nosec G304 -- layout path from configured dir
		if err != nil {
			return bferrors.FileSystemError("read layout file", err).WithContext("layout", name)
		}

		tpl := htmltemplate.New(name)
		if len(partials) > 0 {
			if _, err := tpl.ParseFiles(partials...); err != nil {
				return fmt.Errorf("parse partials for layout %s: %w", name, err)
			}
		}
		if _, err := tpl.Parse(string(raw)); err != nil {
			return fmt.Errorf("parse layout %s: %w", name, err)
		}
		r.layouts[name] = tpl
	}
	return nil
}

func (r *Registry) loadIncludes(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), ".html")

		raw, err := os.ReadFile(path) // #nosec G304 -- include path from configured dir
		if err != nil {
			return bferrors.FileSystemError("read include fragment", err).WithContext("include", name)
		}

		// missingkey=error is the backstop; required placeholders are also
		// checked explicitly before execution for a precise error.
		tpl, err := texttemplate.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse include %s: %w", name, err)
		}

		r.includes[name] = &include{tpl: tpl, params: requiredParams(tpl)}
		return nil
	})
}

// Layout returns the template registered under name.
// Resolution is exact-name only; there is no fallback.
func (r *Registry) Layout(name string) (*htmltemplate.Template, error) {
	tpl, ok := r.layouts[name]
	if !ok {
		return nil, bferrors.UnknownLayout(name)
	}
	return tpl, nil
}

// HasLayout reports whether a layout is registered under name.
func (r *Registry) HasLayout(name string) bool {
	_, ok := r.layouts[name]
	return ok
}

// RenderInclude resolves a fragment and substitutes the directive's
// parameters into its placeholders.
func (r *Registry) RenderInclude(name string, params map[string]string) (string, error) {
	inc, ok := r.includes[name]
	if !ok {
		return "", bferrors.UnknownInclude(name)
	}

	for _, p := range inc.params {
		if _, supplied := params[p]; !supplied {
			return "", bferrors.MissingParameter(name, p)
		}
	}

	var sb strings.Builder
	if err := inc.tpl.Execute(&sb, params); err != nil {
		return "", bferrors.Wrap(err, bferrors.KindRender, "execute include fragment").
			WithContext("include", name)
	}
	return sb.String(), nil
}

// requiredParams walks the parse tree and collects the top-level field names
// the fragment references ({{.id}} -> "id").
func requiredParams(tpl *texttemplate.Template) []string {
	seen := make(map[string]struct{})
	for _, t := range tpl.Templates() {
		if t.Tree != nil && t.Tree.Root != nil {
			collectFields(t.Tree.Root, seen)
		}
	}

	params := make([]string, 0, len(seen))
	for p := range seen {
		params = append(params, p)
	}
	sort.Strings(params)
	return params
}

func collectFields(node parse.Node, out map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectFields(child, out)
		}
	case *parse.ActionNode:
		collectPipe(n.Pipe, out)
	case *parse.IfNode:
		collectPipe(n.Pipe, out)
		collectFields(n.List, out)
		collectFields(n.ElseList, out)
	case *parse.RangeNode:
		// dot is rebound inside the body, so its fields are element
		// fields, not directive parameters; the else branch keeps the
		// original dot.
		collectPipe(n.Pipe, out)
		collectFields(n.ElseList, out)
	case *parse.WithNode:
		collectPipe(n.Pipe, out)
		collectFields(n.ElseList, out)
	case *parse.TemplateNode:
		collectPipe(n.Pipe, out)
	}
}

func collectPipe(pipe *parse.PipeNode, out map[string]struct{}) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 {
					out[a.Ident[0]] = struct{}{}
				}
			case *parse.PipeNode:
				collectPipe(a, out)
			}
		}
	}
}
