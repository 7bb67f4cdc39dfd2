// Package frontmatter splits and parses the `---` delimited YAML header
// that every content document begins with.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnclosedHeader indicates the document opened a front matter header but
// never closed it.
var ErrUnclosedHeader = errors.New("front matter opened but closing delimiter is missing")

// Style captures the newline shape of a document so rewrites stay stable.
type Style struct {
	Newline string
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a front matter delimiter, had is false
// and body is the full input.
func Split(content []byte) (header []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	headerStart := len(open)
	if bytes.HasPrefix(content[headerStart:], open) {
		// Empty header block.
		return []byte{}, content[headerStart+len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[headerStart:], closeSeq)
	if idx < 0 {
		// A closing marker at EOF without a trailing newline still counts.
		closeEOF := []byte(nl + "---")
		if bytes.HasSuffix(content, closeEOF) {
			headerEnd := len(content) - len(closeEOF) + len(nl)
			return content[headerStart:headerEnd], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrUnclosedHeader
	}

	headerEnd := headerStart + idx + len(nl)
	bodyStart := headerStart + idx + len(closeSeq)
	return content[headerStart:headerEnd], content[bodyStart:], true, style, nil
}

// Parse parses raw YAML front matter (without --- delimiters) into a map.
//
// Scalar-only or otherwise non-mapping YAML is rejected: the header must be
// key-value pairs.
func Parse(header []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(header)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(header, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("front matter is not a mapping of key-value pairs")
	}
	return fields, nil
}

// Compose reassembles a document from front matter fields and a body.
func Compose(fields map[string]any, body []byte, style Style) ([]byte, error) {
	header, err := Serialize(fields, style)
	if err != nil {
		return nil, err
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	marker := []byte("---" + nl)

	out := make([]byte, 0, 2*len(marker)+len(header)+len(body))
	out = append(out, marker...)
	out = append(out, header...)
	out = append(out, marker...)
	out = append(out, body...)
	return out, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}
	return Style{Newline: newline}
}
