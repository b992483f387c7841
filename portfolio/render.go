package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	decimal_opt "github.com/tsiemens/cgt/decimal_value"
	"github.com/tsiemens/cgt/util"
)

// Reports are in Australian dollars, shown as plain "$". No currency
// conversion is done.
var dollarFormatter = money.NewFormatter(
	money.GetCurrency(money.AUD).Fraction, ".", ",", "$", "$1")

const discountMark = " ✓"

type _PrintHelper struct {
	PrintAllDecimals bool
}

func (h _PrintHelper) CurrStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		return val.String()
	}
	return val.StringFixed(2)
}

// DollarStr rounds to cents only here, at presentation time.
func (h _PrintHelper) DollarStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		if val.IsNegative() {
			return "-$" + val.Neg().String()
		}
		return "$" + val.String()
	}
	cents := val.Round(2).Shift(2).IntPart()
	return dollarFormatter.Format(cents)
}

func (h _PrintHelper) OptDollarStr(val decimal_opt.DecimalOpt) string {
	if val.IsNull {
		return "-"
	}
	return h.DollarStr(val.Decimal)
}

func strOrDash(useStr bool, str string) string {
	if useStr {
		return str
	}
	return "-"
}

// HeldStr formats a holding period roughly as years and months, marking
// discount-eligible disposals.
func HeldStr(daysHeld int, discountEligible bool) string {
	years := daysHeld / 365
	months := (daysHeld % 365) / 30
	held := fmt.Sprintf("%dm", months)
	if years > 0 {
		held = fmt.Sprintf("%dy %dm", years, months)
	}
	return held + util.Tern(discountEligible, discountMark, "")
}

type RenderTable struct {
	Header []string
	Rows   [][]string
	Footer []string
	Notes  []string
	Errors []error
}

func RenderSalesTable(records []*SaleRecord, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Date Sold", "Security", "Quantity", "Held", "Acquired",
		"Cost/Unit", "Sale Price", "Cost Basis", "Proceeds", "Sell Fee", "Gain/Loss"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	total := decimal.Zero
	sawDiscount := false
	for _, r := range records {
		total = total.Add(r.GainOrLoss)
		sawDiscount = sawDiscount || r.DiscountEligible
		table.Rows = append(table.Rows, []string{
			r.SoldDate.String(), r.Security, r.Quantity.String(),
			HeldStr(r.DaysHeld, r.DiscountEligible),
			r.AcquiredDate.String(),
			ph.DollarStr(r.UnitCost), ph.DollarStr(r.UnitSalePrice),
			ph.DollarStr(r.CostBasis), ph.DollarStr(r.Proceeds),
			strOrDash(!r.SellFee.IsZero(), ph.DollarStr(r.SellFee)),
			ph.DollarStr(r.GainOrLoss),
		})
	}
	table.Footer = []string{"", "", "", "", "", "", "", "", "", "Total", ph.DollarStr(total)}

	if sawDiscount {
		table.Notes = append(table.Notes,
			fmt.Sprintf("%s = held more than %d days (discount eligible)", discountMark, LongTermHoldingDays))
	}
	return table
}

func RenderTaxSummaryTable(s *TaxSummary, renderFullDollarValues bool) *RenderTable {
	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	table := &RenderTable{}
	table.Header = []string{"", "Amount"}
	table.Rows = [][]string{
		{"Total sales", fmt.Sprintf("%d", s.NumSales)},
		{"Total units sold", s.UnitsSold.String()},
		{"Total capital gains", ph.DollarStr(s.GrossGain)},
		{"  Discount-eligible (held >12 months)", ph.DollarStr(s.DiscountGains)},
		{"  Non-discount (held <=12 months)", ph.DollarStr(s.NonDiscountGains)},
		{"Total capital losses", ph.DollarStr(s.GrossLoss)},
		{"Net capital gain/loss (before discount)", ph.DollarStr(s.NetGain)},
		{"Non-discount gains after losses", ph.DollarStr(s.NonDiscountAfterLoss)},
		{"Discount-eligible gains after losses", ph.DollarStr(s.DiscountAfterLoss)},
		{fmt.Sprintf("CGT discount (%s%%)", DiscountRate.Shift(2).String()), "-" + ph.DollarStr(s.DiscountAmount)},
		{"Net capital gain", ph.DollarStr(s.NetTaxableGain)},
	}
	if s.UnappliedLoss.IsPositive() {
		table.Rows = append(table.Rows, []string{"Net capital loss carried forward", ph.DollarStr(s.UnappliedLoss)})
	}
	return table
}

func RenderSecuritySummaryTable(sums []*SecuritySummary, renderFullDollarValues bool) *RenderTable {
	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	table := &RenderTable{}
	table.Header = []string{"Security", "Sales", "Gains", "Losses", "Net"}
	for _, s := range sums {
		table.Rows = append(table.Rows, []string{
			s.Security, fmt.Sprintf("%d", s.NumSales),
			ph.DollarStr(s.Gains), ph.DollarStr(s.Losses), ph.DollarStr(s.Net()),
		})
	}
	return table
}

// Per-lot breakdown, grouped by security then acquisition date.
func RenderLotBreakdownTable(records []*SaleRecord, renderFullDollarValues bool) *RenderTable {
	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	sorted := make([]*SaleRecord, len(records))
	copy(sorted, records)
	sortRecordsBySecurityAndAcquisition(sorted)

	table := &RenderTable{}
	table.Header = []string{"Security", "Quantity", "Acquired", "Acq. Ref", "Sold", "Sale Ref",
		"Cost Basis", "Proceeds", "Gain/Loss"}
	for _, r := range sorted {
		table.Rows = append(table.Rows, []string{
			r.Security, r.Quantity.String(),
			fmt.Sprintf("%s @ %s", r.AcquiredDate, ph.DollarStr(r.UnitCost)), r.AcquiredReference,
			fmt.Sprintf("%s @ %s", r.SoldDate, ph.DollarStr(r.UnitSalePrice)), r.SoldReference,
			ph.DollarStr(r.CostBasis), ph.DollarStr(r.Proceeds), ph.DollarStr(r.GainOrLoss),
		})
	}
	return table
}

func RenderTxTable(txs []*Tx, renderFullDollarValues bool) *RenderTable {
	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	table := &RenderTable{}
	table.Header = []string{"Date", "Action", "Security", "Quantity", "Price", "Fee", "Reference", "Memo"}
	for _, tx := range txs {
		table.Rows = append(table.Rows, []string{
			tx.Date.String(), strings.ToUpper(tx.Action.String()), tx.Security, tx.Quantity.String(),
			ph.DollarStr(tx.Price), strOrDash(!tx.Fee.IsZero(), ph.DollarStr(tx.Fee)),
			tx.Reference, tx.Memo,
		})
	}
	return table
}

/*
Generates a RenderTable that will render out to this:
| Year             | Capital Gains |
+------------------+---------------+
| 2000             | xxxx.xx       |
| 2001             | xxxx.xx       |
| Since inception  | xxxx.xx       |
*/
func RenderAggregateCapitalGains(
	gains *CumulativeCapitalGains, startMonth time.Month, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Year", "Capital Gains"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	years := gains.CapitalGainsYearTotalsKeysSorted()
	for _, year := range years {
		yearlyTotal := gains.CapitalGainsYearTotals[year]
		label := FiscalYear{EndYear: year, StartMonth: startMonth}.String()
		table.Rows = append(
			table.Rows,
			[]string{fmt.Sprintf("%d (%s)", year, label), ph.DollarStr(yearlyTotal)})
	}
	table.Rows = append(
		table.Rows,
		[]string{"Since inception", ph.DollarStr(gains.CapitalGainsTotal)})

	return table
}

func RenderYearlyActivityTable(activity []*YearlyActivity, renderFullDollarValues bool) *RenderTable {
	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	table := &RenderTable{}
	table.Header = []string{"Year", "Buys", "Buy Value", "Sells", "Sell Value", "Fees"}
	for _, a := range activity {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", a.Year),
			fmt.Sprintf("%d", a.NumBuys), ph.DollarStr(a.BuyValue),
			fmt.Sprintf("%d", a.NumSells), ph.DollarStr(a.SellValue),
			ph.DollarStr(a.Fees),
		})
	}
	return table
}

// RenderTaxYearIndexTable lists the value bought and sold in each year beside
// the value of the holdings at its end. currentYear has not ended, so it has
// no year end value.
func RenderTaxYearIndexTable(
	activity []*YearlyActivity, yearEndValues map[int]decimal_opt.DecimalOpt,
	currentYear int, renderFullDollarValues bool) *RenderTable {

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	byYear := map[int]*YearlyActivity{}
	for _, a := range activity {
		byYear[a.Year] = a
	}
	for y := range yearEndValues {
		if _, ok := byYear[y]; !ok {
			byYear[y] = &YearlyActivity{
				Year: y, BuyValue: decimal.Zero, SellValue: decimal.Zero, Fees: decimal.Zero}
		}
	}

	table := &RenderTable{}
	table.Header = []string{"Year", "Value Bought", "Value Sold", "Holdings at Year End"}
	for _, y := range util.SortedIntKeys(byYear) {
		a := byYear[y]
		yearStr := fmt.Sprintf("%d", y)
		if y == currentYear {
			yearStr += " (in progress)"
		}
		value, ok := yearEndValues[y]
		if !ok {
			value = decimal_opt.Null
		}
		table.Rows = append(table.Rows, []string{
			yearStr, ph.DollarStr(a.BuyValue), ph.DollarStr(a.SellValue), ph.OptDollarStr(value),
		})
	}
	return table
}

// RenderHoldingsTable renders holdings valued at the given unit prices, with
// the gain not yet realized over their cost base. A null price means none
// could be found, and the holding is left out of the totals.
func RenderHoldingsTable(
	holdings []*Holding, prices map[string]decimal_opt.DecimalOpt,
	renderFullDollarValues bool) *RenderTable {

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}
	table := &RenderTable{}
	table.Header = []string{"Security", "Quantity", "Cost Base", "Price", "Value", "Unrealized Gain"}

	total := decimal.Zero
	totalGain := decimal.Zero
	for _, h := range holdings {
		price, ok := prices[h.Security]
		if !ok {
			price = decimal_opt.Null
		}
		value := price.MulD(h.Quantity)
		gain := value.SubD(h.CostBase)
		total = total.Add(value.OrZero())
		totalGain = totalGain.Add(gain.OrZero())
		priceStr := util.Tern(price.IsNull, "[price not available]", ph.DollarStr(price.Decimal))
		table.Rows = append(table.Rows, []string{
			h.Security, h.Quantity.String(), ph.DollarStr(h.CostBase), priceStr,
			ph.OptDollarStr(value), ph.OptDollarStr(gain),
		})
	}
	table.Footer = []string{"", "", "", "Total", ph.DollarStr(total), ph.DollarStr(totalGain)}
	return table
}
