package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/util"
)

type CumulativeCapitalGains struct {
	CapitalGainsTotal decimal.Decimal
	// Fiscal year (named by end year) -> net gain of sales in that year
	CapitalGainsYearTotals map[int]decimal.Decimal
}

func (g *CumulativeCapitalGains) CapitalGainsYearTotalsKeysSorted() []int {
	return util.SortedIntKeys(g.CapitalGainsYearTotals)
}

// CalcCumulativeCapitalGains totals the net gain (before discount) of the
// records per fiscal year, and since inception.
func CalcCumulativeCapitalGains(records []*SaleRecord, startMonth time.Month) *CumulativeCapitalGains {
	capGainsTotal := decimal.Zero
	capGainsYearTotals := map[int]decimal.Decimal{}

	for _, r := range records {
		capGainsTotal = capGainsTotal.Add(r.GainOrLoss)
		year := FiscalYearOf(r.SoldDate, startMonth)
		yearTotalSoFar, ok := capGainsYearTotals[year]
		if !ok {
			yearTotalSoFar = decimal.Zero
		}
		capGainsYearTotals[year] = yearTotalSoFar.Add(r.GainOrLoss)
	}

	return &CumulativeCapitalGains{capGainsTotal, capGainsYearTotals}
}

type YearlyActivity struct {
	Year      int
	NumBuys   int
	NumSells  int
	BuyValue  decimal.Decimal
	SellValue decimal.Decimal
	Fees      decimal.Decimal
}

// CalcYearlyActivity totals the gross value of buys and sells, and all fees,
// per fiscal year. Txs with no recognized action are ignored.
func CalcYearlyActivity(txs []*Tx, startMonth time.Month) []*YearlyActivity {
	byYear := make(map[int]*YearlyActivity)
	for _, tx := range txs {
		if tx.Action != BUY && tx.Action != SELL {
			continue
		}
		year := FiscalYearOf(tx.Date, startMonth)
		act, ok := byYear[year]
		if !ok {
			act = &YearlyActivity{
				Year: year, BuyValue: decimal.Zero, SellValue: decimal.Zero, Fees: decimal.Zero}
			byYear[year] = act
		}
		if tx.Action == BUY {
			act.NumBuys++
			act.BuyValue = act.BuyValue.Add(tx.Value())
		} else {
			act.NumSells++
			act.SellValue = act.SellValue.Add(tx.Value())
		}
		act.Fees = act.Fees.Add(tx.Fee)
	}

	out := make([]*YearlyActivity, 0, len(byYear))
	for _, year := range util.SortedIntKeys(byYear) {
		out = append(out, byYear[year])
	}
	return out
}
