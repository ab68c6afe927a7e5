package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgBlue, color.Bold)
	pathColor    = color.New(color.Bold)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем, если включён Context, строку исходника с подчёркиванием ^~~~ по Span.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		return c.Sprint(s)
	}

	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}

	var sb strings.Builder
	for _, d := range items {
		file := fs.Get(d.Primary.File)
		loc := formatLocation(d.Primary, file, opts.PathMode, opts.BaseDir)
		fmt.Fprintf(&sb, "%s: %s %s: %s\n",
			paint(pathColor, loc),
			paint(severityColor(d.Severity), d.Severity.String()),
			d.Code.ID(),
			d.Message)

		if opts.Context && file != nil {
			writeContext(&sb, file, d.Primary, func(s string) string { return paint(caretColor, s) })
		}

		if opts.ShowNotes {
			for _, n := range d.Notes {
				nloc := formatLocation(n.Span, fs.Get(n.Span.File), opts.PathMode, opts.BaseDir)
				fmt.Fprintf(&sb, "  note: %s: %s\n", nloc, n.Msg)
			}
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(&sb, "... %d more diagnostics not shown\n", dropped)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatLocation(sp source.Span, file *source.File, mode PathMode, baseDir string) string {
	if file == nil {
		return fmt.Sprintf("<unknown>:[%d,%d)", sp.Start, sp.End)
	}
	pos, _, _ := locate(file.Content, sp.Start)
	return fmt.Sprintf("%s:%d:%d", formatPath(file.Path, mode, baseDir), pos.Line, pos.Col)
}

// writeContext печатает строку, в которой начинается span, и подчёркивание под ним.
// Многострочный span подчёркивается до конца первой строки.
func writeContext(sb *strings.Builder, file *source.File, sp source.Span, paintCaret func(string) string) {
	_, lineStart, lineEnd := locate(file.Content, sp.Start)
	line := string(file.Content[lineStart:lineEnd])
	line = strings.TrimRight(line, "\r")

	start := min(int(sp.Start)-lineStart, len(line))
	end := min(int(sp.End)-lineStart, len(line))
	end = max(end, start)

	pad := runewidth.StringWidth(expandTabs(line[:start]))
	width := max(runewidth.StringWidth(expandTabs(line[start:end])), 1)

	sb.WriteString("  | ")
	sb.WriteString(expandTabs(line))
	sb.WriteString("\n  | ")
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(paintCaret("^" + strings.Repeat("~", width-1)))
	sb.WriteString("\n")
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
