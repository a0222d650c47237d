package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const placeholderETA = "--:--"

// Terminal renders progress as one carriage-return overwritten line when the
// output is a terminal. When it is not (log files, CI), only flush-triggered
// updates are written, each on its own line.
type Terminal struct {
	w       io.Writer
	tty     bool
	lastLen int
	dirty   bool // a \r line is on screen without a trailing newline
}

// NewTerminal writes to f and detects whether f is a terminal.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{w: f, tty: term.IsTerminal(int(f.Fd()))}
}

// NewWriter writes to w; tty selects the overwrite mode.
func NewWriter(w io.Writer, tty bool) *Terminal {
	return &Terminal{w: w, tty: tty}
}

func (t *Terminal) OnProgress(s Snapshot) {
	line := Line(s)
	if !t.tty {
		if s.Flush {
			fmt.Fprintln(t.w, line)
		}
		return
	}
	pad := ""
	if n := t.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprint(t.w, "\r"+line+pad)
	t.lastLen = len(line)
	t.dirty = true
}

func (t *Terminal) OnFileDone(s Snapshot) {
	if t.dirty {
		fmt.Fprintln(t.w)
		t.dirty = false
		t.lastLen = 0
	}
	fmt.Fprint(t.w, Summary(s))
}

// Line renders the single-line progress indicator.
func Line(s Snapshot) string {
	var b strings.Builder
	b.WriteString(s.Pipeline)
	b.WriteString(": ")
	if p, ok := s.Percent(); ok {
		fmt.Fprintf(&b, "%s/%s (%.1f%%)", humanize.Comma(s.Count), humanize.Comma(s.Total), p)
	} else {
		fmt.Fprintf(&b, "%s lines", humanize.Comma(s.Count))
	}
	fmt.Fprintf(&b, " | inserted %s", humanize.Comma(s.Success))
	if s.SkippedExisting > 0 {
		fmt.Fprintf(&b, " | existing %s", humanize.Comma(s.SkippedExisting))
	}
	if s.Dropped > 0 {
		fmt.Fprintf(&b, " | dropped %s", humanize.Comma(s.Dropped))
	}
	if s.Errors > 0 {
		fmt.Fprintf(&b, " | failed %s", humanize.Comma(s.Errors))
	}
	fmt.Fprintf(&b, " | %s/s", humanize.Comma(int64(s.Rate())))
	if s.Total >= 0 && s.Elapsed > etaWarmup {
		eta := placeholderETA
		if d, ok := s.ETA(); ok {
			eta = FormatDuration(d)
		}
		fmt.Fprintf(&b, " | ETA %s", eta)
	}
	return b.String()
}

// Summary renders the multi-line end-of-file report.
func Summary(s Snapshot) string {
	var b strings.Builder
	if s.Err != nil {
		fmt.Fprintf(&b, "%s: aborted %s\n", s.Pipeline, s.File)
	} else {
		fmt.Fprintf(&b, "%s: finished %s\n", s.Pipeline, s.File)
	}
	fmt.Fprintf(&b, "  processed:        %s\n", humanize.Comma(s.Count))
	fmt.Fprintf(&b, "  inserted:         %s\n", humanize.Comma(s.Success))
	fmt.Fprintf(&b, "  skipped existing: %s\n", humanize.Comma(s.SkippedExisting))
	fmt.Fprintf(&b, "  dropped (no key): %s\n", humanize.Comma(s.Dropped))
	fmt.Fprintf(&b, "  failed:           %s\n", humanize.Comma(s.Errors))
	fmt.Fprintf(&b, "  duration:         %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "  rate:             %s lines/s\n", humanize.Comma(int64(s.Rate())))
	if s.Err != nil {
		fmt.Fprintf(&b, "  error:            %v\n", s.Err)
	}
	return b.String()
}

// FormatDuration renders d as MM:SS, or H:MM:SS past the hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return placeholderETA
	}
	secs := int64(d.Round(time.Second) / time.Second)
	h, m, sec := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
