package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/app/outfmt"
	"github.com/tsiemens/cgt/date"
	decimal_opt "github.com/tsiemens/cgt/decimal_value"
	"github.com/tsiemens/cgt/log"
	ptf "github.com/tsiemens/cgt/portfolio"
)

// ClosePriceGetter looks up the closing price of several securities on a date.
// Securities with no price map to a null value.
type ClosePriceGetter interface {
	GetCloses(ctx context.Context, securities []string, d date.Date) (map[string]decimal_opt.DecimalOpt, error)
}

type HoldingsOptions struct {
	// Fiscal years (by ending year) to value the holdings at the end of.
	// Empty for every year from the first transaction.
	Years      []int
	StartMonth time.Month

	RenderFullDollarValues bool
}

// holdingsYears lists the years whose end has passed, from the year of the
// first tx unless years are given.
func holdingsYears(txs []*ptf.Tx, options HoldingsOptions) []int {
	startMonth := options.StartMonth
	if startMonth == 0 {
		startMonth = ptf.TaxYearStartMonth
	}
	today := date.Today()

	years := options.Years
	if len(years) == 0 && len(txs) > 0 {
		sorted := ptf.SortTxs(txs)
		first := ptf.FiscalYearOf(sorted[0].Date, startMonth)
		last := ptf.FiscalYearOf(today, startMonth)
		for y := first; y <= last; y++ {
			years = append(years, y)
		}
	}

	out := make([]int, 0, len(years))
	for _, y := range years {
		fy := ptf.FiscalYear{EndYear: y, StartMonth: startMonth}
		if fy.End().After(today) {
			log.Tracef("prices", "skipping incomplete year %d", y)
			continue
		}
		out = append(out, y)
	}
	return out
}

// RunHoldingsApp writes the holdings at the end of each year, valued at the
// closing prices on the last day of the year. prices may be nil, in which case
// holdings are not valued.
func RunHoldingsApp(
	ctx context.Context,
	txs []*ptf.Tx,
	options HoldingsOptions,
	prices ClosePriceGetter,
	writer outfmt.ReportWriter,
	errPrinter log.ErrorPrinter) error {

	startMonth := options.StartMonth
	if startMonth == 0 {
		startMonth = ptf.TaxYearStartMonth
	}

	years := holdingsYears(txs, options)
	if len(years) == 0 {
		errPrinter.Ln("Warning: No completed years to report holdings for")
	}

	yearEndValues := map[int]decimal_opt.DecimalOpt{}
	for _, y := range years {
		fy := ptf.FiscalYear{EndYear: y, StartMonth: startMonth}
		yearEnd := fy.End()
		holdings := ptf.HoldingsAt(txs, yearEnd)

		closes := map[string]decimal_opt.DecimalOpt{}
		if prices != nil && len(holdings) > 0 {
			secs := make([]string, 0, len(holdings))
			for _, h := range holdings {
				secs = append(secs, h.Security)
			}
			var err error
			closes, err = prices.GetCloses(ctx, secs, yearEnd)
			if err != nil {
				return fmt.Errorf("Getting prices for %s: %w", yearEnd, err)
			}
		}

		if prices != nil {
			yearEndValues[y] = holdingsValue(holdings, closes)
		}

		table := ptf.RenderHoldingsTable(holdings, closes, options.RenderFullDollarValues)
		if err := writer.PrintRenderTable(outfmt.Holdings, yearEnd.String(), table); err != nil {
			return err
		}
	}

	if len(txs) == 0 {
		return nil
	}
	index := ptf.RenderTaxYearIndexTable(
		ptf.CalcYearlyActivity(txs, startMonth), yearEndValues,
		ptf.FiscalYearOf(date.Today(), startMonth), options.RenderFullDollarValues)
	return writer.PrintRenderTable(outfmt.TaxYearIndex, "", index)
}

// holdingsValue totals the holdings which have a price.
func holdingsValue(holdings []*ptf.Holding, closes map[string]decimal_opt.DecimalOpt) decimal_opt.DecimalOpt {
	total := decimal.Zero
	for _, h := range holdings {
		if price, ok := closes[h.Security]; ok {
			total = total.Add(price.MulD(h.Quantity).OrZero())
		}
	}
	return decimal_opt.New(total)
}
