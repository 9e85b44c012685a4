package htmlpatch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docvars/internal/vars"
)

var testTable = vars.MustTable(map[string]string{
	"TEXT_MODEL": "Hermes-3-Llama-3.1-70B",
	"GO_MODEL":   "Hermes3Llama3170B",
	"HTML":       "<b>&</b>",
})

const page = `<!DOCTYPE html>
<html><head><title>{{TEXT_MODEL}}</title></head>
<body>
<nav>{{TEXT_MODEL}}</nav>
<main><h1>Models</h1><p>Default: {{TEXT_MODEL}} and {{UNKNOWN}}</p></main>
<div class="sidebar content"><span>{{GO_MODEL}}</span></div>
<div class="contents">{{GO_MODEL}}</div>
<pre><code>model := "{{GO_MODEL}}"</code></pre>
</body></html>`

func TestPatch(t *testing.T) {
	p := New(testTable, zerolog.Nop())
	out, n, err := p.Patch([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	s := string(out)
	assert.Contains(t, s, "<p>Default: Hermes-3-Llama-3.1-70B and {{UNKNOWN}}</p>")
	assert.Contains(t, s, "<span>Hermes3Llama3170B</span>")
	assert.Contains(t, s, `model := &#34;Hermes3Llama3170B&#34;`)

	// Outside target elements nothing changes.
	assert.Contains(t, s, "<title>{{TEXT_MODEL}}</title>")
	assert.Contains(t, s, "<nav>{{TEXT_MODEL}}</nav>")
	assert.Contains(t, s, `<div class="contents">{{GO_MODEL}}</div>`)
}

func TestPatch_ValuesAreText(t *testing.T) {
	p := New(testTable, zerolog.Nop())
	out, n, err := p.Patch([]byte("<article>{{HTML}}</article>"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, string(out), "<article>&lt;b&gt;&amp;&lt;/b&gt;</article>")
}

func TestPatch_NoTokensReturnsInput(t *testing.T) {
	src := []byte("<main><p>nothing</p></main>")
	p := New(testTable, zerolog.Nop())
	out, n, err := p.Patch(src)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, src, out)
}

func TestPatchDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guides"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(page), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "guides", "go.htm"), []byte("<code>{{GO_MODEL}}</code>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plain.html"), []byte("<main>plain</main>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "source.md"), []byte("<main>{{GO_MODEL}}</main>"), 0o644))

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(root, "plain.html"), old, old))

	var logBuf bytes.Buffer
	p := New(testTable, zerolog.New(&logBuf))
	stats, err := p.PatchDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 3, Changed: 2, Replacements: 4}, stats)

	data, err := os.ReadFile(filepath.Join(root, "guides", "go.htm"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<code>Hermes3Llama3170B</code>")

	data, err = os.ReadFile(filepath.Join(root, "source.md"))
	require.NoError(t, err)
	assert.Equal(t, "<main>{{GO_MODEL}}</main>", string(data))

	info, err := os.Stat(filepath.Join(root, "plain.html"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))

	assert.Contains(t, logBuf.String(), "guides/go.htm")
}

func TestPatchDir_Cancelled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(page), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testTable, zerolog.Nop()).PatchDir(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPatchFile_Missing(t *testing.T) {
	_, _, err := New(testTable, zerolog.Nop()).PatchFile(filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}
