// Package cliout provides consistent CLI output formatting for cmd/vexcol,
// adapting its icon/status-line conventions to plain text when stdout isn't
// a terminal (piped output, CI logs).
package cliout

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Writer formats status lines for the CLI.
type Writer struct {
	out   io.Writer
	icons bool
}

// New creates a Writer. Icons are only emitted when out is a terminal.
func New(out io.Writer) *Writer {
	icons := false
	if f, ok := out.(*os.File); ok {
		icons = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, icons: icons}
}

func (w *Writer) Status(icon, msg string) {
	if w.icons && icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
		return
	}
	_, _ = fmt.Fprintln(w.out, msg)
}

func (w *Writer) Success(msg string) { w.Status("✓", msg) }
func (w *Writer) Warning(msg string) { w.Status("!", msg) }
func (w *Writer) Error(msg string)   { w.Status("✗", msg) }

func (w *Writer) Successf(format string, args ...any) { w.Success(fmt.Sprintf(format, args...)) }
func (w *Writer) Errorf(format string, args ...any)   { w.Error(fmt.Sprintf(format, args...)) }
