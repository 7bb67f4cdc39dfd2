package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToHTML_Heading_GetsAutoID(t *testing.T) {
	out, err := ToHTML([]byte("## Monitoring tools\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), `<h2 id="monitoring-tools">Monitoring tools</h2>`)
}

func TestToHTML_RawHTML_PassesThrough(t *testing.T) {
	out, err := ToHTML([]byte("before\n\n<iframe src=\"https://example.com\"></iframe>\n\nafter\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), `<iframe src="https://example.com"></iframe>`)
}

func TestToHTML_GFMTable_Renders(t *testing.T) {
	src := "| tool | kind |\n| --- | --- |\n| kamon | metrics |\n"
	out, err := ToHTML([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
	require.Contains(t, string(out), "<td>kamon</td>")
}

func TestToHTML_FencedCode_EscapesContents(t *testing.T) {
	src := "```scala\nval x = console.putStrLn(\"hi\")\n```\n"
	out, err := ToHTML([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(out), `<pre><code class="language-scala">`)
	require.Contains(t, string(out), "&quot;hi&quot;")
}
