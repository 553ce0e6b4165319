package sync

import (
	"fmt"
	"io"
	"os"
	"strings"
	gosync "sync"

	"github.com/mattn/go-isatty"
)

const scanProgressEvery = 100

// Progress writes cosmetic scan and execution counters. Overwritten counter
// lines are only emitted on a terminal; verbose per-entry lines are always
// printed. Safe for use from the two concurrent scan goroutines.
type Progress struct {
	mu  gosync.Mutex
	w   io.Writer
	tty bool
}

func NewProgress(w io.Writer) *Progress {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}
	return &Progress{w: w, tty: tty}
}

// Scanning overwrites the current line with a running file count.
func (p *Progress) Scanning(files int) {
	if p == nil || !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r  Scanning... %d files", files)
}

// Entry reports one plan entry. Verbose mode prints a full line per entry;
// otherwise the line is overwritten in place.
func (p *Progress) Entry(index, total int, verb, path string, verbose bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if verbose {
		fmt.Fprintf(p.w, "  [%d/%d] %s %s\n", index, total, verb, path)
		return
	}
	if p.tty {
		fmt.Fprintf(p.w, "\r  [%d/%d] %s %s%s", index, total, verb, path, strings.Repeat(" ", 10))
	}
}

// ClearLine erases the overwritten counter line.
func (p *Progress) ClearLine() {
	if p == nil || !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", 80))
}
