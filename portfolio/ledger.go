package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/log"
	"github.com/tsiemens/cgt/util"
)

// LotTake is one (possibly partial) consumption of a lot.
type LotTake struct {
	Lot      *AcquisitionLot
	Quantity decimal.Decimal
}

// LotLedger holds the open lots of one security in acquisition order.
type LotLedger struct {
	security string
	lots     []*AcquisitionLot
}

func NewLotLedger(security string) *LotLedger {
	return &LotLedger{security: security}
}

func (l *LotLedger) Security() string {
	return l.security
}

func (l *LotLedger) Append(lot *AcquisitionLot) {
	util.Assertf(lot.Security == l.security,
		"LotLedger.Append: securities do not match (%s and %s)", lot.Security, l.security)
	util.Assertf(lot.RemainingQuantity.IsPositive(),
		"LotLedger.Append: lot of %s has non-positive quantity %s", l.security, lot.RemainingQuantity)
	l.lots = append(l.lots, lot)
}

// Consume takes up to requested units from the oldest lots first. Lots
// reaching zero are removed. The returned residual is the quantity that
// could not be satisfied because the ledger ran out of lots.
func (l *LotLedger) Consume(requested decimal.Decimal) (takes []LotTake, residual decimal.Decimal) {
	residual = requested
	for residual.IsPositive() && len(l.lots) > 0 {
		head := l.lots[0]
		q := decimal.Min(residual, head.RemainingQuantity)

		head.RemainingQuantity = head.RemainingQuantity.Sub(q)
		residual = residual.Sub(q)
		takes = append(takes, LotTake{Lot: head, Quantity: q})
		log.Tracef("ledger", "%s: took %s from lot %s (%s left)",
			l.security, q, head.AcquiredDate, head.RemainingQuantity)

		if head.RemainingQuantity.IsZero() {
			l.lots[0] = nil
			l.lots = l.lots[1:]
		}
	}
	return takes, residual
}

// OpenLots returns copies of the open lots, oldest first.
func (l *LotLedger) OpenLots() []AcquisitionLot {
	out := make([]AcquisitionLot, 0, len(l.lots))
	for _, lot := range l.lots {
		out = append(out, *lot)
	}
	return out
}

// Remaining is the total quantity across all open lots.
func (l *LotLedger) Remaining() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range l.lots {
		total = total.Add(lot.RemainingQuantity)
	}
	return total
}

func (l *LotLedger) Len() int {
	return len(l.lots)
}

// LotLedgers maps each security to its ledger, creating ledgers on demand.
// A fresh set must be used for every matching run.
type LotLedgers = util.DefaultMap[string, *LotLedger]

func NewLotLedgers() *LotLedgers {
	return util.NewDefaultMap(func(security string) *LotLedger {
		return NewLotLedger(security)
	})
}
