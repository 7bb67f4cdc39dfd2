package render

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/blogforge/internal/templates"
)

// Include directives use the shortcode form {{< name key="value" ... >}}.
var (
	directivePattern = regexp.MustCompile(`\{\{<\s*([a-zA-Z0-9_-]+)((?:\s+[a-zA-Z0-9_-]+="[^"]*")*)\s*>\}\}`)
	paramPattern     = regexp.MustCompile(`([a-zA-Z0-9_-]+)="([^"]*)"`)
)

// resolveDirectives substitutes every include directive in the body with its
// resolved fragment, left to right. Resolution is non-recursive: resolved
// content is not re-scanned for further directives. Directives inside fenced
// code blocks are left untouched so prose can demonstrate the syntax.
func resolveDirectives(body string, reg *templates.Registry) (string, error) {
	var result strings.Builder
	var resolveErr error

	lines := strings.Split(body, "\n")
	inFencedCodeBlock := false
	var fenceMarker string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			if !inFencedCodeBlock {
				inFencedCodeBlock = true
				fenceMarker = trimmed[:3]
			} else if strings.HasPrefix(trimmed, fenceMarker) {
				inFencedCodeBlock = false
			}
			result.WriteString(line)
		} else if inFencedCodeBlock || !strings.Contains(line, "{{<") {
			result.WriteString(line)
		} else {
			resolved := directivePattern.ReplaceAllStringFunc(line, func(match string) string {
				if resolveErr != nil {
					return match
				}
				sub := directivePattern.FindStringSubmatch(match)
				name, params := sub[1], parseParams(sub[2])

				out, err := reg.RenderInclude(name, params)
				if err != nil {
					resolveErr = err
					return match
				}
				return out
			})
			if resolveErr != nil {
				return "", resolveErr
			}
			result.WriteString(resolved)
		}

		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}

	return result.String(), nil
}

func parseParams(raw string) map[string]string {
	params := make(map[string]string)
	for _, m := range paramPattern.FindAllStringSubmatch(raw, -1) {
		params[m[1]] = m[2]
	}
	return params
}
