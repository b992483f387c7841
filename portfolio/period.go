package portfolio

import (
	"fmt"
	"time"

	"github.com/tsiemens/cgt/date"
)

// Period selects which disposals belong to a report, by sold date.
type Period interface {
	Contains(d date.Date) bool
	String() string
}

// The Australian income year runs 1 July to 30 June.
const TaxYearStartMonth = time.July

// FiscalYear is the twelve months starting on the 1st of StartMonth, and is
// named by the calendar year in which it ends.
type FiscalYear struct {
	EndYear    int
	StartMonth time.Month
}

// NewTaxYear returns the 1 Jul - 30 Jun year ending in endYear.
// eg. 2025 is 1 Jul 2024 - 30 Jun 2025.
func NewTaxYear(endYear int) FiscalYear {
	return FiscalYear{EndYear: endYear, StartMonth: TaxYearStartMonth}
}

func NewCalendarYear(year int) FiscalYear {
	return FiscalYear{EndYear: year, StartMonth: time.January}
}

func (fy FiscalYear) startMonth() time.Month {
	if fy.StartMonth == 0 {
		return time.January
	}
	return fy.StartMonth
}

func (fy FiscalYear) Start() date.Date {
	startYear := fy.EndYear
	if fy.startMonth() != time.January {
		startYear--
	}
	return date.New(uint32(startYear), fy.startMonth(), 1)
}

func (fy FiscalYear) End() date.Date {
	next := FiscalYear{EndYear: fy.EndYear + 1, StartMonth: fy.startMonth()}
	return next.Start().AddDays(-1)
}

func (fy FiscalYear) Contains(d date.Date) bool {
	return !d.Before(fy.Start()) && !d.After(fy.End())
}

func (fy FiscalYear) String() string {
	const layout = "2 Jan 2006"
	return fmt.Sprintf("%s - %s", fy.Start().Format(layout), fy.End().Format(layout))
}

// FiscalYearOf returns the name (ending year) of the fiscal year containing d.
func FiscalYearOf(d date.Date, startMonth time.Month) int {
	year, month, _ := d.Parts()
	if startMonth > time.January && month >= startMonth {
		return year + 1
	}
	return year
}

// DateRange is inclusive at both ends. A zero From or To is unbounded.
type DateRange struct {
	From date.Date
	To   date.Date
}

func (r DateRange) Contains(d date.Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

func (r DateRange) String() string {
	from, to := "inception", "present"
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return from + " - " + to
}

// FilterSales returns the records sold within period. A nil period selects
// all records.
func FilterSales(records []*SaleRecord, period Period) []*SaleRecord {
	if period == nil {
		return records
	}
	out := make([]*SaleRecord, 0, len(records))
	for _, r := range records {
		if period.Contains(r.SoldDate) {
			out = append(out, r)
		}
	}
	return out
}

// FilterTxs returns the txs dated within period. A nil period selects all.
func FilterTxs(txs []*Tx, period Period) []*Tx {
	if period == nil {
		return txs
	}
	out := make([]*Tx, 0, len(txs))
	for _, tx := range txs {
		if period.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}
