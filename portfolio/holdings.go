package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/util"
)

type Holding struct {
	Security string
	Quantity decimal.Decimal
	// Sum of the remaining cost (price and unallocated buy fees) of the open lots.
	CostBase decimal.Decimal
	Lots     []AcquisitionLot
}

// HoldingsAt replays txs up to and including asOf, and returns the open
// position of every security still held, sorted by security.
//
// Because it uses the same FIFO replay as ComputeSales, a sell with no
// matching lots does not produce a negative holding.
func HoldingsAt(txs []*Tx, asOf date.Date) []*Holding {
	result := ComputeSales(txs, MatchOptions{AsOf: asOf})

	holdings := make([]*Holding, 0, len(result.OpenLots))
	for _, sec := range util.SortedStringKeys(result.OpenLots) {
		lots := result.OpenLots[sec]
		h := &Holding{Security: sec, Quantity: decimal.Zero, CostBase: decimal.Zero, Lots: lots}
		for i := range lots {
			lot := &lots[i]
			h.Quantity = h.Quantity.Add(lot.RemainingQuantity)
			h.CostBase = h.CostBase.Add(
				lot.RemainingQuantity.Mul(lot.UnitPrice).Add(lot.RemainingFee()))
		}
		holdings = append(holdings, h)
	}
	return holdings
}
