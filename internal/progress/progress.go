package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/log"
)

// Tracker renders page progress for the category pair being walked
type Tracker struct {
	bar    progress.Model
	out    io.Writer
	logger *log.Logger

	label string
	total int
	done  int
	mu    sync.Mutex
}

// New creates a Tracker drawing to out. A nil out disables the bar; counts
// are still logged.
func New(out io.Writer, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		out:    out,
		logger: logger,
	}
}

// Start resets the tracker for a new pair with total pages.
func (p *Tracker) Start(label string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = label
	p.total = total
	p.done = 0
}

// Advance marks one more page of the current pair as processed.
func (p *Tracker) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++

	p.logger.Info("pages processed", "pair", p.label, "done", p.done, "total", p.total)
	if p.out == nil || p.total == 0 {
		return
	}
	fmt.Fprintf(p.out, "\r%s %s %d/%d pages",
		p.label,
		p.bar.ViewAs(float64(p.done)/float64(p.total)),
		p.done,
		p.total)
	if p.done == p.total {
		fmt.Fprintln(p.out)
	}
}

// Progress returns the completed fraction of the current pair.
func (p *Tracker) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return 0
	}
	return float64(p.done) / float64(p.total)
}

// Done returns the number of pages processed for the current pair.
func (p *Tracker) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
