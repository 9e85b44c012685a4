// Package progress reports batch processing of content roots.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress while the files of one content root are
// expanded. Start and Finish bracket each root.
type Reporter interface {
	Start(root string, total int)
	// File reports the done-th file of the root; changed is true when the
	// file was rewritten.
	File(done int, path string, changed bool)
	Finish()
}

// NewReporter picks a reporter for stderr: a progress bar on an
// interactive terminal, plain lines under CI or when output is redirected.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" || !isatty.IsTerminal(os.Stderr.Fd()) {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{Out: os.Stderr}
}

// tally tracks one content root.
type tally struct {
	root    string
	total   int
	changed int
	started time.Time
}

func (t *tally) reset(root string, total int) {
	*t = tally{root: root, total: total, started: time.Now()}
}

func (t *tally) summary() string {
	return fmt.Sprintf("%s: %d of %d files rewritten in %s",
		t.root, t.changed, t.total, time.Since(t.started).Round(time.Millisecond))
}

// TerminalReporter draws one progress bar per content root and leaves a
// summary line behind when the root is done.
type TerminalReporter struct {
	Out io.Writer

	bar *progressbar.ProgressBar
	tally
}

func (r *TerminalReporter) Start(root string, total int) {
	r.reset(root, total)
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.Out),
		progressbar.OptionSetDescription("Expanding "+root),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) File(done int, path string, changed bool) {
	if changed {
		r.changed++
	}
	if r.bar == nil {
		return
	}
	r.bar.Describe(path)
	_ = r.bar.Set(done)
}

func (r *TerminalReporter) Finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
	fmt.Fprintln(r.Out, r.summary())
}

// CIReporter writes one line per rewritten file, so build logs show what
// changed without listing every untouched page.
type CIReporter struct {
	Out io.Writer
	tally
}

func (r *CIReporter) Start(root string, total int) {
	r.reset(root, total)
	fmt.Fprintf(r.out(), "%s: scanning %d content files\n", root, total)
}

func (r *CIReporter) File(done int, path string, changed bool) {
	if !changed {
		return
	}
	r.changed++
	fmt.Fprintf(r.out(), "[%d/%d] %s\n", done, r.total, path)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out(), r.summary())
}

func (r *CIReporter) out() io.Writer {
	if r.Out == nil {
		return os.Stderr
	}
	return r.Out
}

// Discard is a Reporter that reports nothing.
type Discard struct{}

func (Discard) Start(string, int)      {}
func (Discard) File(int, string, bool) {}
func (Discard) Finish()                {}
