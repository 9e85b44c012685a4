// Package htmlpatch expands {{NAME}} tokens inside already-rendered HTML
// pages, applying the same element selection as the browser script.
package htmlpatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/docvars/internal/vars"
	"github.com/ziadkadry99/docvars/internal/walker"
)

// Extensions are the rendered page suffixes PatchDir visits.
var Extensions = []string{".html", ".htm"}

// targetTags are elements whose text content is rewritten. Elements with a
// "content" class are targets as well.
var targetTags = map[string]bool{
	"code":    true,
	"article": true,
	"main":    true,
}

// Stats summarises a PatchDir run.
type Stats struct {
	Scanned      int
	Changed      int
	Replacements int
}

// Patcher rewrites HTML files using a fixed table.
type Patcher struct {
	table  *vars.Table
	logger zerolog.Logger
}

// New returns a Patcher for table.
func New(table *vars.Table, logger zerolog.Logger) *Patcher {
	return &Patcher{table: table, logger: logger}
}

// Patch parses src and expands tokens in text beneath target elements. The
// document is re-rendered only when at least one token was replaced;
// otherwise src is returned unchanged.
func (p *Patcher) Patch(src []byte) ([]byte, int, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing html: %w", err)
	}

	count := p.patchNode(doc, false)
	if count == 0 {
		return src, 0, nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, 0, fmt.Errorf("rendering html: %w", err)
	}
	return buf.Bytes(), count, nil
}

func (p *Patcher) patchNode(n *html.Node, inTarget bool) int {
	if n.Type == html.TextNode {
		if !inTarget {
			return 0
		}
		out, c := p.table.ExpandCount(n.Data)
		if c > 0 {
			n.Data = out
		}
		return c
	}

	if n.Type == html.ElementNode && !inTarget {
		inTarget = isTarget(n)
	}

	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += p.patchNode(c, inTarget)
	}
	return count
}

func isTarget(n *html.Node) bool {
	if targetTags[n.Data] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == "content" {
					return true
				}
			}
		}
	}
	return false
}

// PatchFile patches the file at path in place, writing only when something
// changed.
func (p *Patcher) PatchFile(path string) (bool, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return false, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	out, n, err := p.Patch(src)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", path, err)
	}
	if n == 0 {
		return false, 0, nil
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, n, nil
}

// PatchDir patches every .html and .htm file beneath root.
func (p *Patcher) PatchDir(ctx context.Context, root string) (Stats, error) {
	var stats Stats

	files, err := walker.Walk(walker.WalkerConfig{RootDir: root, Extensions: Extensions})
	if err != nil {
		return stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scanned++
		changed, n, err := p.PatchFile(f.Path)
		if err != nil {
			return stats, err
		}
		if changed {
			stats.Changed++
			stats.Replacements += n
			p.logger.Info().Str("file", f.RelPath).Int("replacements", n).Msg("Patched variables")
		}
	}
	return stats, nil
}
