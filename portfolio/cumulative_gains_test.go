package portfolio

import (
	"testing"
	"time"

	"github.com/tsiemens/cgt/date"
)

func TestCumulativeCapitalGains(t *testing.T) {
	rq := NewCustomRequire(t)

	records := []*SaleRecord{
		{SoldDate: date.New(2023, time.June, 30), GainOrLoss: DInt(10)},
		{SoldDate: date.New(2023, time.July, 1), GainOrLoss: DInt(20)},
		{SoldDate: date.New(2024, time.February, 1), GainOrLoss: DInt(-5)},
		{SoldDate: date.New(2024, time.August, 1), GainOrLoss: DInt(1)},
	}

	gains := CalcCumulativeCapitalGains(records, TaxYearStartMonth)
	rq.DecStrEqual("26", gains.CapitalGainsTotal)
	rq.Equal([]int{2023, 2024, 2025}, gains.CapitalGainsYearTotalsKeysSorted())
	rq.DecStrEqual("10", gains.CapitalGainsYearTotals[2023])
	rq.DecStrEqual("15", gains.CapitalGainsYearTotals[2024])
	rq.DecStrEqual("1", gains.CapitalGainsYearTotals[2025])

	gains = CalcCumulativeCapitalGains(records, time.January)
	rq.Equal([]int{2023, 2024}, gains.CapitalGainsYearTotalsKeysSorted())
	rq.DecStrEqual("30", gains.CapitalGainsYearTotals[2023])
	rq.DecStrEqual("-4", gains.CapitalGainsYearTotals[2024])

	empty := CalcCumulativeCapitalGains(nil, TaxYearStartMonth)
	rq.DecStrEqual("0", empty.CapitalGainsTotal)
	rq.Len(empty.CapitalGainsYearTotalsKeysSorted(), 0)
}

func TestYearlyActivity(t *testing.T) {
	rq := NewCustomRequire(t)

	activity := CalcYearlyActivity(txs(
		TTx{Date: date.New(2024, time.May, 1), Act: BUY, Qty: DInt(10), Price: DInt(2), Fee: DInt(1)},
		TTx{Date: date.New(2024, time.July, 1), Act: BUY, Qty: DInt(1), Price: DInt(5), Fee: DInt(1)},
		TTx{Date: date.New(2024, time.August, 1), Act: SELL, Qty: DInt(5), Price: DInt(3), Fee: DInt(2)},
		TTx{Date: date.New(2024, time.August, 2), Act: NO_ACTION, Qty: DInt(5), Price: DInt(3)},
	), TaxYearStartMonth)

	rq.Len(activity, 2)
	rq.DeepEqual(&YearlyActivity{
		Year: 2024, NumBuys: 1, BuyValue: DInt(20), SellValue: DInt(0), Fees: DInt(1)}, activity[0])
	rq.DeepEqual(&YearlyActivity{
		Year: 2025, NumBuys: 1, NumSells: 1, BuyValue: DInt(5), SellValue: DInt(15), Fees: DInt(3)},
		activity[1])
}
