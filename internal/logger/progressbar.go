package logger

import (
	"fmt"
	"io"
	"strings"
)

// ProgressBar renders an in-place ASCII progress bar. It only writes when
// the rendered percentage changes, and it stays completely silent when the
// writer is not a terminal, so piped output never fills with control
// characters.
type ProgressBar struct {
	writer   io.Writer
	width    int
	total    int
	lastPerc int
	active   bool
}

// NewProgressBar creates a bar for total steps, width characters wide.
// If w is not a terminal the bar is disabled.
func NewProgressBar(w io.Writer, total, width int) *ProgressBar {
	if width < 1 {
		width = 50
	}
	return &ProgressBar{
		writer:   w,
		width:    width,
		total:    total,
		lastPerc: -1,
		active:   IsTerminal(w) && total > 0,
	}
}

// Update redraws the bar for the given progress count.
func (pb *ProgressBar) Update(done int) {
	if !pb.active {
		return
	}

	perc := done * 100 / pb.total
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	if perc == pb.lastPerc {
		return
	}
	pb.lastPerc = perc

	filled := perc * pb.width / 100
	bar := strings.Repeat("#", filled) + strings.Repeat("-", pb.width-filled)
	fmt.Fprintf(pb.writer, "\r[%s] %3d%%", bar, perc)
}

// Finish fills the bar and terminates the line.
func (pb *ProgressBar) Finish() {
	if !pb.active {
		return
	}
	pb.Update(pb.total)
	fmt.Fprintln(pb.writer)
}
