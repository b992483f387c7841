package portfolio

import "sort"

// SortRecordsBySoldDate orders records by sold date, keeping the engine's
// order for records of the same date.
func SortRecordsBySoldDate(records []*SaleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SoldDate.Before(records[j].SoldDate)
	})
}

func sortRecordsBySecurityAndAcquisition(records []*SaleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Security != b.Security {
			return a.Security < b.Security
		}
		return a.AcquiredDate.Before(b.AcquiredDate)
	})
}
