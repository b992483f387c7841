package outfmt

import (
	"errors"

	"github.com/tsiemens/cgt/portfolio"
)

type OutputType int

const (
	Transactions OutputType = iota
	Sales
	TaxSummary
	SecuritySummary
	LotBreakdown
	AggregateGains
	YearlyActivity
	Holdings
	TaxYearIndex
)

// Title is the heading a table of this type is printed under.
func (t OutputType) Title() string {
	switch t {
	case Transactions:
		return "All Buy/Sell Transactions with Fees"
	case Sales:
		return "Detailed Records"
	case TaxSummary:
		return "Summary"
	case SecuritySummary:
		return "Summary by Security"
	case LotBreakdown:
		return "Detailed Breakdown by Acquisition Lot"
	case AggregateGains:
		return "Aggregate Gains"
	case YearlyActivity:
		return "Yearly Activity"
	case Holdings:
		return "Holdings"
	case TaxYearIndex:
		return "Tax Year Index"
	}
	return "Unknown"
}

func (t OutputType) fileStem() string {
	switch t {
	case Transactions:
		return "transactions"
	case Sales:
		return "sales"
	case TaxSummary:
		return "tax-summary"
	case SecuritySummary:
		return "security-summary"
	case LotBreakdown:
		return "lot-breakdown"
	case AggregateGains:
		return "aggregate-gains"
	case YearlyActivity:
		return "yearly-activity"
	case Holdings:
		return "holdings"
	case TaxYearIndex:
		return "tax-year-index"
	}
	return "unknown"
}

type ReportWriter interface {
	// name qualifies the table, eg. with the period or security it covers.
	// It may be empty.
	PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error
}

// MultiWriter prints every table to each of its writers in turn.
type MultiWriter []ReportWriter

func (m MultiWriter) PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error {
	var errs []error
	for _, w := range m {
		if err := w.PrintRenderTable(outType, name, tableModel); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes any writers which buffer their output.
func (m MultiWriter) Close() error {
	var errs []error
	for _, w := range m {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
