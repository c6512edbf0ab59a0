// Package logger provides the leveled console logger and progress rendering
// used by the CLI. Output is timestamped, filtered by level, and colored
// only when writing to a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]int{
	"trace": levelTrace,
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// Console writes leveled, timestamped log lines to a writer. It is safe for
// concurrent use.
type Console struct {
	mu       sync.Mutex
	writer   io.Writer
	minLevel int
	colored  bool
}

// NewConsole creates a Console writing to w. level is one of trace, debug,
// info, warn, error (case-insensitive); anything else falls back to info.
// Color is enabled only when w is a terminal.
func NewConsole(w io.Writer, level string) *Console {
	min, ok := levelNames[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		min = levelInfo
	}
	return &Console{
		writer:   w,
		minLevel: min,
		colored:  IsTerminal(w),
	}
}

// IsTerminal reports whether w is a TTY that can render colors and
// in-place progress updates.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var (
	traceColor = color.New(color.FgHiBlack)
	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgBlue)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	okColor    = color.New(color.FgGreen, color.Bold)
)

func (c *Console) log(level int, tag string, paint *color.Color, format string, args ...any) {
	if c == nil || c.writer == nil || level < c.minLevel {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := time.Now().Format("15:04:05")
	label := tag
	if c.colored {
		label = paint.Sprint(tag)
	}
	fmt.Fprintf(c.writer, "[%s] %s %s\n", stamp, label, fmt.Sprintf(format, args...))
}

// Tracef logs at trace level.
func (c *Console) Tracef(format string, args ...any) {
	c.log(levelTrace, "TRACE", traceColor, format, args...)
}

// Debugf logs at debug level.
func (c *Console) Debugf(format string, args ...any) {
	c.log(levelDebug, "DEBUG", debugColor, format, args...)
}

// Infof logs at info level.
func (c *Console) Infof(format string, args ...any) {
	c.log(levelInfo, "INFO ", infoColor, format, args...)
}

// Warnf logs at warn level.
func (c *Console) Warnf(format string, args ...any) {
	c.log(levelWarn, "WARN ", warnColor, format, args...)
}

// Errorf logs at error level.
func (c *Console) Errorf(format string, args ...any) {
	c.log(levelError, "ERROR", errorColor, format, args...)
}

// Successf logs a completion message at info level.
func (c *Console) Successf(format string, args ...any) {
	c.log(levelInfo, "OK   ", okColor, format, args...)
}
