package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/markphelps/optional"

	"github.com/tsiemens/cgt/app/outfmt"
	"github.com/tsiemens/cgt/log"
	ptf "github.com/tsiemens/cgt/portfolio"
	"github.com/tsiemens/cgt/tradefile"
	"github.com/tsiemens/cgt/util"
)

const CgtVersion = "0.3.0"

// ErrUnmatchedDisposals is returned after a report has been written, if any
// sell could not be fully matched to earlier buys. The report is incomplete
// in that case.
var ErrUnmatchedDisposals = errors.New("Some sells exceed the units held, so their gains could not be computed")

type DescribedReader struct {
	Desc   string
	Reader io.Reader
}

type Options struct {
	// Only report on this security.
	Security optional.String
	// Only report sales in this period. nil for all time.
	Period     ptf.Period
	StartMonth time.Month

	RenderFullDollarValues bool
}

func (o *Options) startMonth() time.Month {
	if o.StartMonth == 0 {
		return ptf.TaxYearStartMonth
	}
	return o.StartMonth
}

// ReportTitle describes what a report covers.
func ReportTitle(options Options) string {
	title := "Capital Gains Report"
	if sec, err := options.Security.Get(); err == nil {
		title += " - " + strings.ToUpper(sec)
	}
	switch p := options.Period.(type) {
	case nil:
		title += " (All Time)"
	case ptf.FiscalYear:
		kind := util.Tern(p.StartMonth == time.January, "Year", "Tax Year")
		title += fmt.Sprintf(" - %s %d (%s)", kind, p.EndYear, p)
	default:
		title += fmt.Sprintf(" (%s)", p)
	}
	return title
}

// ReadTxs reads txs from each CSV, and from the trade files under
// tradeBasePath if it is not empty. Rows or files which cannot be read are
// reported to errPrinter and skipped.
func ReadTxs(
	csvReaders []DescribedReader, tradeBasePath string, errPrinter log.ErrorPrinter) ([]*ptf.Tx, error) {

	allTxs := make([]*ptf.Tx, 0, 20)
	var readIndex uint32 = 0

	if tradeBasePath != "" {
		txs, warnings, err := tradefile.LoadTrades(tradeBasePath, readIndex)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			errPrinter.Ln("Warning:", w)
		}
		allTxs = append(allTxs, txs...)
		readIndex += uint32(len(txs))
	}

	for _, csvReader := range csvReaders {
		txs, warnings, err := ptf.ParseTxCsv(csvReader.Reader, readIndex, csvReader.Desc)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			errPrinter.Ln("Warning:", w)
		}
		allTxs = append(allTxs, txs...)
		readIndex += uint32(len(txs))
	}
	return allTxs, nil
}

type CgtRenderModel struct {
	Title  string
	Result *ptf.MatchResult
	// Of the sales in the period
	Summary *ptf.TaxSummary

	Transactions    *ptf.RenderTable
	Sales           *ptf.RenderTable
	TaxSummary      *ptf.RenderTable
	SecuritySummary *ptf.RenderTable
	LotBreakdown    *ptf.RenderTable
	AggregateGains  *ptf.RenderTable
	YearlyActivity  *ptf.RenderTable
}

func filterTxsBySecurity(txs []*ptf.Tx, security optional.String) []*ptf.Tx {
	sec, err := security.Get()
	if err != nil {
		return txs
	}
	return ptf.SplitTxsBySecurity(txs)[ptf.NormalizeSecurity(sec)]
}

// RunCgtAppToRenderModel matches all txs, and builds the report tables for
// the sales in options.Period. Matching always replays the full history, so
// sales in the period are matched against lots bought before it.
func RunCgtAppToRenderModel(
	txs []*ptf.Tx, options Options, errPrinter log.ErrorPrinter) *CgtRenderModel {

	result := ptf.ComputeSales(txs, ptf.MatchOptions{Security: options.Security})
	for _, skipped := range result.Skipped {
		errPrinter.Ln("Warning:", skipped)
	}
	for _, unmatched := range result.Unmatched {
		errPrinter.Ln("Error:", unmatched)
	}

	allSales := make([]*ptf.SaleRecord, len(result.Sales))
	copy(allSales, result.Sales)
	ptf.SortRecordsBySoldDate(allSales)
	sales := ptf.FilterSales(allSales, options.Period)
	summary := ptf.Aggregate(sales)

	full := options.RenderFullDollarValues
	secTxs := ptf.SortTxs(filterTxsBySecurity(txs, options.Security))
	model := &CgtRenderModel{
		Title:           ReportTitle(options),
		Result:          result,
		Summary:         summary,
		Transactions:    ptf.RenderTxTable(ptf.FilterTxs(secTxs, options.Period), full),
		Sales:           ptf.RenderSalesTable(sales, full),
		TaxSummary:      ptf.RenderTaxSummaryTable(summary, full),
		SecuritySummary: ptf.RenderSecuritySummaryTable(ptf.SummarizeBySecurity(sales), full),
		LotBreakdown:    ptf.RenderLotBreakdownTable(sales, full),
		AggregateGains: ptf.RenderAggregateCapitalGains(
			ptf.CalcCumulativeCapitalGains(allSales, options.startMonth()), options.startMonth(), full),
		YearlyActivity: ptf.RenderYearlyActivityTable(
			ptf.CalcYearlyActivity(secTxs, options.startMonth()), full),
	}

	for _, unmatched := range result.Unmatched {
		if options.Period == nil || options.Period.Contains(unmatched.Date) {
			model.Sales.Errors = append(model.Sales.Errors, errors.New(unmatched.String()))
		}
	}
	return model
}

// WriteRenderModel writes the report tables in the order of the markdown
// report.
func WriteRenderModel(model *CgtRenderModel, writer outfmt.ReportWriter, singleSecurity bool) error {
	type section struct {
		outType outfmt.OutputType
		table   *ptf.RenderTable
	}
	sections := []section{
		{outfmt.Transactions, model.Transactions},
	}
	if len(model.Sales.Rows) > 0 {
		sections = append(sections, section{outfmt.TaxSummary, model.TaxSummary})
		if !singleSecurity {
			sections = append(sections, section{outfmt.SecuritySummary, model.SecuritySummary})
		}
	}
	sections = append(sections, section{outfmt.Sales, model.Sales})
	if len(model.Sales.Rows) > 0 {
		sections = append(sections, section{outfmt.LotBreakdown, model.LotBreakdown})
	}
	sections = append(sections,
		section{outfmt.AggregateGains, model.AggregateGains},
		section{outfmt.YearlyActivity, model.YearlyActivity})

	for _, s := range sections {
		if err := writer.PrintRenderTable(s.outType, "", s.table); err != nil {
			return err
		}
	}
	return nil
}

// RunCgtApp reads all txs and writes the capital gains report for options.
//
// The report is written even if some sells are unmatched, and
// ErrUnmatchedDisposals is then returned.
func RunCgtApp(
	csvReaders []DescribedReader,
	tradeBasePath string,
	options Options,
	writer outfmt.ReportWriter,
	errPrinter log.ErrorPrinter) error {

	txs, err := ReadTxs(csvReaders, tradeBasePath, errPrinter)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		errPrinter.Ln("Warning: No transactions found")
	}

	model := RunCgtAppToRenderModel(txs, options, errPrinter)
	if err := WriteRenderModel(model, writer, options.Security.Present()); err != nil {
		return err
	}
	if model.Result.HasUnmatched() {
		return ErrUnmatchedDisposals
	}
	return nil
}
