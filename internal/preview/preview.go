// Package preview renders a single content file, with tokens expanded, to a
// standalone HTML page.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docvars/internal/vars"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; color: #1f2328; }
    main.content { max-width: 860px; margin: 0 auto; padding: 2rem 1.5rem; line-height: 1.6; }
    pre { padding: 1rem; border-radius: 6px; overflow-x: auto; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 0.9em; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #d0d7de; padding: 0.4rem 0.8rem; }
  </style>
</head>
<body>
  <main class="content">
    <article>
{{.Content}}
    </article>
  </main>
</body>
</html>
`

type pageData struct {
	Title   string
	Content template.HTML
}

// Page is a rendered preview.
type Page struct {
	Title        string
	HTML         []byte
	Replacements int
}

// Renderer turns Markdown/MDX source into preview pages.
type Renderer struct {
	table *vars.Table
	md    goldmark.Markdown
	tmpl  *template.Template
}

// New returns a Renderer that expands tokens from table before rendering.
func New(table *vars.Table) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{
		table: table,
		md:    md,
		tmpl:  template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// Render expands src and converts it to a complete HTML document. name is
// used for the title when the source has neither a front matter title nor
// a top-level heading.
func (r *Renderer) Render(src []byte, name string) (*Page, error) {
	expanded, n := r.table.ExpandCount(string(src))

	meta, body, err := splitFrontMatter(expanded)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert([]byte(body), &content); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = extractTitle(body, name)
	}

	var out bytes.Buffer
	if err := r.tmpl.Execute(&out, pageData{Title: title, Content: template.HTML(content.String())}); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return &Page{Title: title, HTML: out.Bytes(), Replacements: n}, nil
}

// RenderFile renders the file at path and writes the page to outPath.
func (r *Renderer) RenderFile(path, outPath string) (*Page, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	page, err := r.Render(src, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(outPath, page.HTML, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}
	return page, nil
}

type frontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(s string) (frontMatter, string, error) {
	var meta frontMatter
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return meta, s, nil
	}
	rest := s[strings.Index(s, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, s, nil
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, s, fmt.Errorf("parsing front matter: %w", err)
	}
	body := rest[end+len("\n---"):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return meta, body, nil
}

// extractTitle pulls the first # heading from markdown content, or falls back to the filename.
func extractTitle(content, name string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputPath returns the default preview location for a content file.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".preview.html"
}
