package config

import (
	"fmt"
	"os"
)

const defaultConfigTemplate = `# blogforge configuration
site:
  title: "My Blog"
  base_url: "https://example.com"
  description: "Talks, tutorials and notes"

source:
  directory: content
  layouts_dir: layouts
  includes_dir: includes
  static_dir: static

output:
  directory: public
  clean: true

build:
  fail_fast: true
  default_layout: post
  list_layout: list
  check_links: false
  history_path: .blogforge/builds.db

serve:
  port: 1313
  metrics: false
`

// Init writes a default configuration file to the given path.
// Refuses to overwrite an existing file unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	// #nosec G306 -- configuration files are not secrets
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
