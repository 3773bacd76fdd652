package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// FormatLine renders s as a single status line.
func FormatLine(s Snapshot) string {
	eta := "unknown"
	if s.ETAKnown {
		eta = s.ETA.Round(time.Second).String()
	}
	return fmt.Sprintf("%d/%d IPs | %.2f IPs/sec | Progress: %.2f%% | ETA: %s | Elapsed: %s",
		s.Processed, s.Total, s.Rate, s.Percent, eta, s.Elapsed.Round(time.Second))
}

// LineReporter writes one status line per snapshot. On a terminal it redraws
// the same line with a carriage return; otherwise every snapshot gets its own
// line so logs and pipes stay readable.
type LineReporter struct {
	w      io.Writer
	mu     sync.Mutex
	redraw bool
	dirty  bool
}

// NewLineReporter writes to f and redraws in place when f is a terminal.
func NewLineReporter(f *os.File) *LineReporter {
	fd := f.Fd()
	return NewWriterReporter(f, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewWriterReporter writes to w, redrawing in place when redraw is true.
func NewWriterReporter(w io.Writer, redraw bool) *LineReporter {
	return &LineReporter{w: w, redraw: redraw}
}

// Report writes s. A final snapshot always ends the line.
func (r *LineReporter) Report(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := FormatLine(s)
	if !r.redraw {
		fmt.Fprintln(r.w, line)
		return
	}

	fmt.Fprintf(r.w, "\r%s ", line)
	r.dirty = true
	if s.Final {
		fmt.Fprintln(r.w)
		r.dirty = false
	}
}

// Close terminates a partially drawn line.
func (r *LineReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dirty {
		r.dirty = false
		_, err := fmt.Fprintln(r.w)
		return err
	}
	return nil
}
