package portfolio

import (
	"sort"
	"strings"

	"github.com/markphelps/optional"
	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
)

type MatchOptions struct {
	// Only match txs of this security (case-insensitive).
	Security optional.String
	// If set, txs dated after AsOf are not replayed.
	AsOf date.Date
}

type MatchResult struct {
	// In the order the disposals were replayed, and for each disposal, in
	// acquisition order.
	Sales     []*SaleRecord
	Unmatched []*UnmatchedDisposal
	Skipped   []SkippedTx
	// Security -> lots still open at the end of the replay, oldest first.
	OpenLots map[string][]AcquisitionLot
}

func (r *MatchResult) HasUnmatched() bool {
	return len(r.Unmatched) > 0
}

// SortTxs returns a copy of txs ordered by date. Txs on the same date keep
// their original relative order, so a same-day buy only covers a sell that
// appears after it.
func SortTxs(txs []*Tx) []*Tx {
	sorted := make([]*Tx, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// NormalizeSecurity is the key txs of a security are grouped by. Securities
// differing only in case or surrounding space are the same.
func NormalizeSecurity(security string) string {
	return strings.ToUpper(strings.TrimSpace(security))
}

// SplitTxsBySecurity groups txs by normalized security, keeping their order.
func SplitTxsBySecurity(txs []*Tx) map[string][]*Tx {
	txsBySec := make(map[string][]*Tx)
	for _, tx := range txs {
		sec := NormalizeSecurity(tx.Security)
		txsBySec[sec] = append(txsBySec[sec], tx)
	}
	return txsBySec
}

// Returns a reason if the tx cannot be used by the engine, or "" if it can.
func checkTxSanity(tx *Tx) string {
	switch {
	case strings.TrimSpace(tx.Security) == "":
		return "transaction has no security"
	case tx.Date.IsZero():
		return "transaction has no date"
	case tx.Action != BUY && tx.Action != SELL:
		return "unrecognized action"
	case tx.Quantity.IsNegative():
		return "negative quantity " + tx.Quantity.String()
	case tx.Price.IsNegative():
		return "negative price " + tx.Price.String()
	case tx.Fee.IsNegative():
		return "negative fee " + tx.Fee.String()
	}
	return ""
}

// ComputeSales replays txs in date order using FIFO lot matching, and returns
// a SaleRecord for every lot (or part of a lot) consumed by a SELL.
//
// Bad txs are skipped and reported in the result rather than aborting the
// run. Each call uses its own ledgers, so concurrent calls are independent,
// and identical input always produces identical output.
func ComputeSales(txs []*Tx, opts MatchOptions) *MatchResult {
	ledgers := NewLotLedgers()
	result := &MatchResult{OpenLots: make(map[string][]AcquisitionLot)}
	secFilter := NormalizeSecurity(opts.Security.OrElse(""))

	for _, tx := range SortTxs(txs) {
		sec := NormalizeSecurity(tx.Security)
		if secFilter != "" && sec != secFilter {
			continue
		}
		if !opts.AsOf.IsZero() && tx.Date.After(opts.AsOf) {
			break
		}
		if reason := checkTxSanity(tx); reason != "" {
			result.Skipped = append(result.Skipped, SkippedTx{Tx: tx, Reason: reason})
			continue
		}
		if tx.Quantity.IsZero() {
			log.Tracef("match", "ignoring zero quantity tx %v", tx)
			continue
		}
		if sec != tx.Security {
			normalized := *tx
			normalized.Security = sec
			tx = &normalized
		}

		ledger := ledgers.Get(sec)
		switch tx.Action {
		case BUY:
			ledger.Append(NewAcquisitionLot(tx))
		case SELL:
			sales, unmatched := matchSell(ledger, tx)
			result.Sales = append(result.Sales, sales...)
			if unmatched != nil {
				result.Unmatched = append(result.Unmatched, unmatched)
			}
		}
	}

	ledgers.ForEach(func(sec string, ledger *LotLedger) bool {
		if ledger.Len() > 0 {
			result.OpenLots[sec] = ledger.OpenLots()
		}
		return true
	})
	return result
}

// sellFeeShare apportions the sell fee to q of the tx's units.
func sellFeeShare(tx *Tx, q decimal.Decimal) decimal.Decimal {
	if q.Equal(tx.Quantity) {
		return tx.Fee
	}
	return q.Mul(tx.Fee).Div(tx.Quantity)
}

func matchSell(ledger *LotLedger, tx *Tx) ([]*SaleRecord, *UnmatchedDisposal) {
	takes, residual := ledger.Consume(tx.Quantity)

	records := make([]*SaleRecord, 0, len(takes))
	for _, take := range takes {
		lot := take.Lot
		q := take.Quantity

		costBasis := q.Mul(lot.UnitPrice).Add(lot.FeeShare(q))
		proceeds := q.Mul(tx.Price)
		sellFee := sellFeeShare(tx, q)
		daysHeld := tx.Date.DaysSince(lot.AcquiredDate)
		longTerm := daysHeld > LongTermHoldingDays

		record := &SaleRecord{
			AcquiredDate:      lot.AcquiredDate,
			SoldDate:          tx.Date,
			Security:          tx.Security,
			Quantity:          q,
			UnitCost:          lot.UnitPrice,
			CostBasis:         costBasis,
			UnitSalePrice:     tx.Price,
			Proceeds:          proceeds,
			SellFee:           sellFee,
			GainOrLoss:        proceeds.Sub(costBasis).Sub(sellFee),
			AcquiredReference: lot.Reference,
			SoldReference:     tx.Reference,
			DaysHeld:          daysHeld,
			HeldLongTerm:      longTerm,
			// Eligibility is recorded for losses too. Aggregation only
			// discounts gains.
			DiscountEligible: longTerm,
		}
		log.Tracef("match", "%v", record)
		records = append(records, record)
	}

	if residual.IsPositive() {
		unmatched := &UnmatchedDisposal{
			Security:  tx.Security,
			Date:      tx.Date,
			Reference: tx.Reference,
			Requested: tx.Quantity,
			Unmatched: residual,
		}
		log.Tracef("match", "%v", unmatched)
		return records, unmatched
	}
	return records, nil
}
