package outfmt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsiemens/cgt/portfolio"
)

func salesTable() *portfolio.RenderTable {
	return &portfolio.RenderTable{
		Header: []string{"Security", "Gain"},
		Rows:   [][]string{{"VAS", "$10.00"}, {"A|B", "$1.00"}},
		Footer: []string{"Total", "$11.00"},
		Notes:  []string{"a note"},
	}
}

func TestMarkdownWriter(t *testing.T) {
	rq := require.New(t)

	w := NewMarkdownWriter(filepath.Join(t.TempDir(), "report.md"), "My Report")
	rq.NoError(w.PrintRenderTable(Transactions, "", &portfolio.RenderTable{Header: []string{"Date"}}))
	rq.NoError(w.PrintRenderTable(Sales, "", salesTable()))
	rq.NoError(w.PrintRenderTable(TaxSummary, "", &portfolio.RenderTable{
		Header: []string{"", "Amount"},
		Rows:   [][]string{{"Total capital gains", "$11.00"}, {"  Discount-eligible", "$10.00"}},
	}))
	rq.NoError(w.PrintRenderTable(Holdings, "2024-06-30", &portfolio.RenderTable{
		Header: []string{"Security"},
		Errors: []error{errors.New("no prices")},
	}))

	out := w.String()
	rq.True(strings.HasPrefix(out, "# My Report\n\n"))
	// Empty transaction lists are left out
	rq.NotContains(out, "<details>")
	rq.Contains(out, "## Detailed Records\n\n| Security | Gain |\n|--------|----|\n| VAS | $10.00 |\n")
	rq.Contains(out, `| A\|B | $1.00 |`)
	rq.Contains(out, "| **Total** | **$11.00** |")
	rq.Contains(out, "_a note_")
	rq.Contains(out, "- **Total capital gains**: $11.00\n  - Discount-eligible: $10.00\n")
	rq.Contains(out, "> **Warning:** no prices")
	rq.Contains(out, "## Holdings (2024-06-30)\n\nNone\n")

	rq.NoError(w.Close())
	written, err := os.ReadFile(w.Path)
	rq.NoError(err)
	rq.Equal(out, string(written))
}

func TestMarkdownWriterNoSales(t *testing.T) {
	rq := require.New(t)

	w := NewMarkdownWriter("", "")
	rq.NoError(w.PrintRenderTable(Sales, "", &portfolio.RenderTable{Header: []string{"Security"}}))
	rq.Equal(NoSalesText+"\n\n", w.String())
}

func TestHTMLWriter(t *testing.T) {
	rq := require.New(t)

	w := NewHTMLWriter(filepath.Join(t.TempDir(), "report.html"), "Gains 2024")
	rq.NoError(w.PrintRenderTable(Transactions, "", salesTable()))
	rq.NoError(w.PrintRenderTable(Sales, "", salesTable()))
	rq.NoError(w.Close())

	page, err := os.ReadFile(w.Path)
	rq.NoError(err)
	html := string(page)
	rq.Contains(html, "<title>Gains 2024</title>")
	rq.Contains(html, "<h1>Gains 2024</h1>")
	rq.Contains(html, "<details>")
	rq.Contains(html, "<table>")
	rq.Contains(html, "<td>VAS</td>")
}

func TestCSVWriter(t *testing.T) {
	rq := require.New(t)

	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewCSVWriter(dir)
	rq.NoError(err)
	rq.NoError(w.PrintRenderTable(Sales, "", salesTable()))
	rq.NoError(w.PrintRenderTable(Holdings, "2024-06-30", salesTable()))

	content, err := os.ReadFile(filepath.Join(dir, "sales.csv"))
	rq.NoError(err)
	rq.Equal("Security,Gain\nVAS,$10.00\nA|B,$1.00\nTotal,$11.00\na note\n", string(content))

	_, err = os.Stat(filepath.Join(dir, "holdings-2024-06-30.csv"))
	rq.NoError(err)

	rq.Equal("tax-summary-1_Jul_2023_-_30_Jun_2024.csv",
		csvFileName(TaxSummary, "1 Jul 2023 - 30 Jun 2024"))
}

func TestSTDWriter(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer
	w := NewSTDWriter(&buf)
	table := salesTable()
	table.Errors = []error{errors.New("oops")}
	rq.NoError(w.PrintRenderTable(Sales, "VAS", table))
	rq.NoError(w.PrintRenderTable(Holdings, "", &portfolio.RenderTable{}))

	out := buf.String()
	rq.Contains(out, "[!] oops\n")
	rq.Contains(out, "Detailed Records (VAS)\n")
	rq.Contains(out, "VAS")
	rq.Contains(out, "a note")
	rq.Contains(out, "Holdings\nNone\n")
}

type failingWriter struct{ closed bool }

func (w *failingWriter) PrintRenderTable(OutputType, string, *portfolio.RenderTable) error {
	return errors.New("failed")
}

func (w *failingWriter) Close() error {
	w.closed = true
	return nil
}

func TestMultiWriter(t *testing.T) {
	rq := require.New(t)

	md := NewMarkdownWriter("", "")
	fw := &failingWriter{}
	m := MultiWriter{fw, md}
	err := m.PrintRenderTable(Sales, "", salesTable())
	rq.ErrorContains(err, "failed")
	// Later writers still get the table
	rq.Contains(md.String(), "Detailed Records")

	// Only writers with Close are closed
	rq.NoError(MultiWriter{fw, NewSTDWriter(&bytes.Buffer{})}.Close())
	rq.True(fw.closed)
}
