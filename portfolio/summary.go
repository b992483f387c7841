package portfolio

import (
	"fmt"
	"sort"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/util"
)

const SummaryMemo = "Summary"

// MakeSummaryTxs returns Txs which can stand in for every tx up to and
// including latestDate: one BUY per lot still open at that date, keeping the
// lot's acquisition date, unit price and unallocated buy fee. Replaying the
// summary txs followed by the txs after latestDate produces the same later
// sale records as replaying the full history (fee shares may differ in the
// last places of the decimal division).
//
// Return: summary Txs, user warnings, error
func MakeSummaryTxs(latestDate date.Date, txs []*Tx) ([]*Tx, []string, error) {
	nInRange := 0
	for _, tx := range txs {
		if !tx.Date.After(latestDate) {
			nInRange++
		}
	}
	if nInRange == 0 {
		return nil, nil, fmt.Errorf("No transactions in the summary period")
	}

	result := ComputeSales(txs, MatchOptions{AsOf: latestDate})

	var warnings []string
	for _, u := range result.Unmatched {
		warnings = append(warnings, u.String()+". The summary cannot account for it.")
	}
	for _, s := range result.Skipped {
		warnings = append(warnings, s.String())
	}
	if latestDate.After(date.Today()) {
		warnings = append(warnings, fmt.Sprintf(
			"Summary date %s is in the future. Later transactions may be missing.", latestDate))
	}

	var summaryTxs []*Tx
	for _, sec := range util.SortedStringKeys(result.OpenLots) {
		for _, lot := range result.OpenLots[sec] {
			summaryTxs = append(summaryTxs, &Tx{
				Security:  sec,
				Date:      lot.AcquiredDate,
				Action:    BUY,
				Quantity:  lot.RemainingQuantity,
				Price:     lot.UnitPrice,
				Fee:       lot.RemainingFee(),
				Reference: lot.Reference,
				Memo:      SummaryMemo,
			})
		}
	}
	// Per security, lots are already in acquisition order, which a stable
	// sort by date preserves.
	sort.SliceStable(summaryTxs, func(i, j int) bool {
		return summaryTxs[i].Date.Before(summaryTxs[j].Date)
	})
	for i, tx := range summaryTxs {
		tx.ReadIndex = uint32(i)
	}

	return summaryTxs, warnings, nil
}
