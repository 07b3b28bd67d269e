// ABOUTME: Shared text formatting helpers for the views: headings, tables and value formatting
// ABOUTME: Tables use tabwriter with a two-space gutter

package views

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/docreview/internal/api"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	dim    = color.New(color.Faint)
)

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	cyan.Fprintf(w, "  %s\n", title)
	cyan.Fprintf(w, "  %s\n", dashes(len(title)))
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}

func empty(w io.Writer, what string) {
	fmt.Fprintf(w, "  (no %s)\n\n", what)
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line, under := "", ""
	for i, h := range headers {
		if i > 0 {
			line += "\t"
			under += "\t"
		}
		line += h
		under += dashes(len(h))
	}
	fmt.Fprintln(tw, "  "+line)
	fmt.Fprintln(tw, "  "+under)
	return tw
}

// Truncate shortens s to at most maxLen runes, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// HumanSize formats a byte count.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func when(t api.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02 15:04")
}

func yesNo(b bool) string {
	if b {
		return green.Sprint("yes")
	}
	return dim.Sprint("no")
}

func levelColor(level string) *color.Color {
	switch level {
	case "error", "critical":
		return red
	case "warning":
		return yellow
	default:
		return cyan
	}
}

func seconds(f float64) string {
	return (time.Duration(f * float64(time.Second))).Round(time.Microsecond).String()
}
