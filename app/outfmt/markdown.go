package outfmt

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/tsiemens/cgt/portfolio"
)

const NoSalesText = "No capital gains/losses to report for this period."

// MarkdownWriter builds a single markdown report from the tables printed to
// it. Nothing is written to Path until Close.
type MarkdownWriter struct {
	Path  string
	Title string
	buf   bytes.Buffer
}

func NewMarkdownWriter(path string, title string) *MarkdownWriter {
	return &MarkdownWriter{Path: path, Title: title}
}

func mdEscape(cell string) string {
	return strings.ReplaceAll(cell, "|", `\|`)
}

func writeMdRow(b *bytes.Buffer, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(mdEscape(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func writeMdTable(b *bytes.Buffer, tableModel *portfolio.RenderTable) {
	writeMdRow(b, tableModel.Header)
	seps := make([]string, len(tableModel.Header))
	for i, h := range tableModel.Header {
		seps[i] = strings.Repeat("-", max(len(h), 3))
	}
	b.WriteString("|" + strings.Join(seps, "|") + "|\n")
	for _, row := range tableModel.Rows {
		writeMdRow(b, row)
	}
	if len(tableModel.Footer) > 0 {
		footer := make([]string, len(tableModel.Footer))
		for i, f := range tableModel.Footer {
			if f != "" {
				footer[i] = "**" + f + "**"
			}
		}
		writeMdRow(b, footer)
	}
}

// Two column label/value tables are written as a bullet list.
func writeMdList(b *bytes.Buffer, tableModel *portfolio.RenderTable) {
	for _, row := range tableModel.Rows {
		label := strings.TrimLeft(row[0], " ")
		indent := strings.Repeat(" ", len(row[0])-len(label))
		if indent == "" {
			label = "**" + label + "**"
		}
		fmt.Fprintf(b, "%s- %s: %s\n", indent, label, strings.Join(row[1:], " "))
	}
}

// PrintRenderTable implements ReportWriter.
func (w *MarkdownWriter) PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error {
	b := &w.buf
	if b.Len() == 0 && w.Title != "" {
		fmt.Fprintf(b, "# %s\n\n", w.Title)
	}
	for _, err := range tableModel.Errors {
		fmt.Fprintf(b, "> **Warning:** %s\n\n", mdEscape(err.Error()))
	}

	title := outType.Title()
	if name != "" {
		title = fmt.Sprintf("%s (%s)", title, name)
	}

	switch outType {
	case Transactions:
		if len(tableModel.Rows) == 0 {
			return nil
		}
		fmt.Fprintf(b, "<details>\n<summary>%s</summary>\n\n", html.EscapeString(title))
		writeMdTable(b, tableModel)
		b.WriteString("\n</details>\n\n")
		return nil
	case Sales:
		if len(tableModel.Rows) == 0 {
			fmt.Fprintf(b, "%s\n\n", NoSalesText)
			return nil
		}
	}

	fmt.Fprintf(b, "## %s\n\n", title)
	switch {
	case len(tableModel.Rows) == 0:
		b.WriteString("None\n")
	case outType == TaxSummary:
		writeMdList(b, tableModel)
	default:
		writeMdTable(b, tableModel)
	}
	b.WriteString("\n")
	for _, note := range tableModel.Notes {
		fmt.Fprintf(b, "_%s_\n\n", mdEscape(note))
	}
	return nil
}

func (w *MarkdownWriter) String() string {
	return w.buf.String()
}

func (w *MarkdownWriter) Close() error {
	if err := os.WriteFile(w.Path, w.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("Writing markdown report: %w", err)
	}
	return nil
}

// HTMLWriter renders the markdown report to a standalone HTML page on Close.
type HTMLWriter struct {
	MarkdownWriter
}

func NewHTMLWriter(path string, title string) *HTMLWriter {
	return &HTMLWriter{MarkdownWriter{Path: path, Title: title}}
}

const htmlPageFmt = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 70em; margin: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; text-align: right; }
</style>
</head>
<body>
%s</body>
</html>
`

var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// Keep the <details> blocks
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// RenderHTML converts a markdown report to a full HTML page.
func RenderHTML(title string, markdown []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := mdRenderer.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("Rendering HTML report: %w", err)
	}
	return []byte(fmt.Sprintf(htmlPageFmt, html.EscapeString(title), body.String())), nil
}

func (w *HTMLWriter) Close() error {
	page, err := RenderHTML(w.Title, w.buf.Bytes())
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.Path, page, 0o644); err != nil {
		return fmt.Errorf("Writing HTML report: %w", err)
	}
	return nil
}
