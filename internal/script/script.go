// Package script renders the in-browser replacement script from the shared
// model table and compares hand-written scripts against it.
package script

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/ziadkadry99/docvars/internal/vars"
)

//go:embed models.js.tmpl
var templateSource string

var scriptTemplate = template.Must(template.New("models.js").Delims("[[", "]]").Parse(templateSource))

const banner = "// Generated by docvars from the models table. Do not edit by hand."

// DefaultSelectors are the elements whose text nodes are rewritten.
var DefaultSelectors = []string{"pre code", "code", "article", ".content", "main"}

// DefaultDelay is how long the script waits after client-side navigation
// before re-scanning the page.
const DefaultDelay = 100 * time.Millisecond

// Options controls script rendering.
type Options struct {
	// Selectors defaults to DefaultSelectors when empty.
	Selectors []string
	Delay     time.Duration
	Minify    bool
}

// DefaultOptions returns unminified options with the default selectors and delay.
func DefaultOptions() Options {
	return Options{Selectors: DefaultSelectors, Delay: DefaultDelay}
}

type entry struct {
	Key   string
	Value string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// Render produces the browser script for table.
func Render(table *vars.Table, opts Options) ([]byte, error) {
	if opts.Delay < 0 {
		return nil, fmt.Errorf("script delay must be non-negative, got %s", opts.Delay)
	}
	selectors := opts.Selectors
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}

	names := table.Names()
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		value, _ := table.Lookup(name)
		v, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding value of %s: %w", name, err)
		}
		key := name
		if !identPattern.MatchString(name) {
			key = fmt.Sprintf("%q", name)
		}
		entries = append(entries, entry{Key: key, Value: string(v)})
	}

	sel, err := json.Marshal(strings.Join(selectors, ", "))
	if err != nil {
		return nil, fmt.Errorf("encoding selectors: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(banner + "\n")
	err = scriptTemplate.Execute(&buf, map[string]interface{}{
		"Entries":   entries,
		"Selectors": string(sel),
		"DelayMS":   opts.Delay.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering script: %w", err)
	}

	if !opts.Minify {
		return buf.Bytes(), nil
	}
	return Minify(buf.Bytes())
}

// Minify shrinks JavaScript source with esbuild. Identifiers are kept so the
// MODELS table stays readable by ExtractTable.
func Minify(src []byte) ([]byte, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:           api.LoaderJS,
		Target:           api.ES2017,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		Banner:           banner,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		var errMsg string
		for _, err := range result.Errors {
			if err.Location != nil {
				errMsg += fmt.Sprintf("%d:%d: %s\n", err.Location.Line, err.Location.Column, err.Text)
			} else {
				errMsg += err.Text + "\n"
			}
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", errMsg)
	}
	return result.Code, nil
}

// WriteFile renders the script and writes it to path, creating parent
// directories as needed.
func WriteFile(path string, table *vars.Table, opts Options) error {
	data, err := Render(table, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing script %s: %w", path, err)
	}
	return nil
}
