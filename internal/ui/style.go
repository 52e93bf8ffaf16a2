// Package ui prints user-facing lines to stderr so stdout stays free for
// piping transcripts and paths.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	brand    = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	success  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warn     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	key      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	val      = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// Out is where every helper writes. Tests swap it for a buffer.
var Out io.Writer = os.Stderr

func Brand(s string) string { return brand.Render(s) }
func Dim(s string) string   { return dim.Render(s) }
func Key(s string) string   { return key.Render(s) }
func Val(s string) string   { return val.Render(s) }

func Success(format string, a ...any) {
	fmt.Fprintln(Out, success.Render("✓ "+fmt.Sprintf(format, a...)))
}

func Warn(format string, a ...any) {
	fmt.Fprintln(Out, warn.Render("! "+fmt.Sprintf(format, a...)))
}

func Error(format string, a ...any) {
	fmt.Fprintln(Out, errStyle.Render("✗ "+fmt.Sprintf(format, a...)))
}

func Info(format string, a ...any) {
	fmt.Fprintf(Out, format+"\n", a...)
}

func KV(k, v string) {
	fmt.Fprintf(Out, "  %s  %s\n", key.Render(k), val.Render(v))
}
