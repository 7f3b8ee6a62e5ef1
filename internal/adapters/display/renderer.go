// Package display provides the synchronous, line oriented progress output of a build.
package display

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/noderun/internal/ui/output"
	"go.trai.ch/noderun/internal/ui/style"
)

// Options control what the renderer prints.
type Options struct {
	// ShowTimings appends the wall time of every node.
	ShowTimings bool
	// DoNotOutputStderrs suppresses the captured stderr of failed nodes.
	DoNotOutputStderrs bool
	// Verbose prints every partial result and successful node stderr.
	Verbose bool
	// Color selects the colour profile.
	Color output.ColorMode
}

// Renderer implements ports.Display.
// Command output goes to stdout prefixed with the node kind, runner status lines go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output
	opts   Options

	mu       sync.Mutex
	restored int
}

var _ ports.Display = (*Renderer)(nil)

// NewRenderer creates a new Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer, opts Options) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr, opts.Color),
		opts:   opts,
	}
}

// Emit prints a message sent by a command through the control protocol.
func (r *Renderer) Emit(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for line := range strings.Lines(msg) {
		r.printLineLocked("", line)
	}
}

// NodeFinished prints the outcome of a node.
func (r *Renderer) NodeFinished(node *domain.Node, res domain.NodeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := fmt.Sprintf("[%s]", node.ShortName())

	var symbol string
	switch {
	case res.State == domain.StateBrokenByDeps:
		symbol = r.output.String(style.Warning).Foreground(termenv.ANSIYellow).String()
	case res.Failed():
		symbol = r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
	case res.State == domain.StateCacheHit:
		r.restored++
		symbol = r.output.String(style.Tilde).Faint().String()
	default:
		symbol = r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", r.output.String(prefix).Faint().String(), symbol, node.String())
	if res.Failed() {
		fmt.Fprintf(&b, " exit code %d", res.ExitCode)
	}
	if len(res.Tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(res.Tags, ", "))
	}
	if r.opts.ShowTimings && !res.Start.IsZero() && !res.Finish.IsZero() {
		fmt.Fprintf(&b, " in %v", res.Finish.Sub(res.Start).Round(time.Millisecond))
	}
	if res.Status != "" {
		fmt.Fprintf(&b, " (%s)", res.Status)
	}
	_, _ = fmt.Fprintln(r.stderr, b.String())

	if res.Stderr == "" || r.opts.DoNotOutputStderrs {
		return
	}
	if res.Failed() || r.opts.Verbose {
		for line := range strings.Lines(res.Stderr) {
			r.printLineLocked(prefix, line)
		}
	}
}

// Partial prints the streaming result of a node in verbose mode.
func (r *Renderer) Partial(res domain.PartialResult) {
	if !r.opts.Verbose {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := r.output.String(fmt.Sprintf("[%s]", res.UID)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s status %d, %d file(s) in %s\n", prefix, res.Status, len(res.Files), res.BuildRoot)
}

// Summary prints the final report of the build.
func (r *Renderer) Summary(total int, buildErrors map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(buildErrors) == 0 {
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s Built %d node(s), %d restored from cache\n", symbol, total, r.restored)
		return
	}

	symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %d of %d node(s) failed\n", symbol, len(buildErrors), total)

	uids := make([]string, 0, len(buildErrors))
	for uid := range buildErrors {
		uids = append(uids, uid)
	}
	slices.Sort(uids)

	for _, uid := range uids {
		_, _ = fmt.Fprintf(r.stderr, "  %s\n", r.output.String(uid).Bold().String())
		if r.opts.DoNotOutputStderrs {
			continue
		}
		for line := range strings.Lines(buildErrors[uid]) {
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				_, _ = fmt.Fprintf(r.stderr, "    %s\n", line)
			}
		}
	}
}

// printLineLocked prints a line with an optional prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(prefix, line string) {
	// Trim trailing newline for cleaner output
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	if line == "" {
		return
	}

	if prefix == "" {
		_, _ = fmt.Fprintln(r.stdout, line)
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", prefix, line)
}
