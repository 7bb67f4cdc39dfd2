package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogforge/internal/config"
	"git.home.luguber.info/inful/blogforge/internal/frontmatter"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

const layoutPost = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}} - {{.Site.Title}}</title>
</head>
<body>
  <header><a href="/">{{.Site.Title}}</a></header>
  <article>
    <h1>{{.Title}}</h1>
    {{if not .Date.IsZero}}<time>{{.Date.Format "2006-01-02"}}</time>{{end}}
    {{.Content}}
  </article>
</body>
</html>
`

const layoutPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}} - {{.Site.Title}}</title>
</head>
<body>
  <header><a href="/">{{.Site.Title}}</a></header>
  <main>{{.Content}}</main>
</body>
</html>
`

const layoutList = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}} - {{.Site.Title}}</title>
</head>
<body>
  <header><a href="/">{{.Site.Title}}</a></header>
  <h1>{{.Title}}</h1>
  <ul>
  {{range .Pages}}
    <li>
      <a href="{{.Permalink}}">{{.Title}}</a>
      {{if not .Date.IsZero}}<time>{{.Date.Format "2006-01-02"}}</time>{{end}}
    </li>
  {{end}}
  </ul>
</body>
</html>
`

const includeYoutube = `<div class="video">
  <iframe src="https://www.youtube.com/embed/{{.id}}" frameborder="0" allowfullscreen></iframe>
</div>
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	slog.Info("Initializing site project", "config", root.Config, "force", i.Force)

	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}

	files := map[string]string{
		filepath.Join("layouts", "post.html"):     layoutPost,
		filepath.Join("layouts", "page.html"):     layoutPage,
		filepath.Join("layouts", "list.html"):     layoutList,
		filepath.Join("includes", "youtube.html"): includeYoutube,
	}
	for path, body := range files {
		if err := writeScaffold(path, []byte(body), i.Force); err != nil {
			return err
		}
	}

	post, err := samplePost()
	if err != nil {
		return err
	}
	postName := time.Now().Format("2006-01-02") + "-hello-world.md"
	if err := writeScaffold(filepath.Join("content", postName), post, i.Force); err != nil {
		return err
	}

	if err := os.MkdirAll("static", 0o750); err != nil {
		return fmt.Errorf("create static dir: %w", err)
	}

	fmt.Println("Site project initialized. Run 'blogforge serve' to preview.")
	return nil
}

func samplePost() ([]byte, error) {
	fields := map[string]any{
		"title":       "Hello World",
		"description": "First post",
		"categories":  "general",
		"date":        time.Now().Format("2006-01-02"),
	}
	body := []byte("\nWelcome to your new site. Edit or delete this post and start writing.\n" +
		"\nEmbed a video with an include directive:\n" +
		"\n{{< youtube id=\"fVw_8BOTF3s\" >}}\n")
	return frontmatter.Compose(fields, body, frontmatter.Style{Newline: "\n"})
}

func writeScaffold(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		slog.Debug("Skipping existing file", "path", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	// #nosec G306 -- scaffold files are project sources, not secrets
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
