package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// The fraction of a discount-eligible gain which is excluded from the net
// capital gain.
var DiscountRate = decimal.NewFromFloat(0.5)

type TaxSummary struct {
	NumSales  int
	UnitsSold decimal.Decimal

	GrossGain decimal.Decimal
	// Sum of all losses. Zero or negative.
	GrossLoss decimal.Decimal
	// GrossGain + GrossLoss, before any discount.
	NetGain decimal.Decimal

	DiscountGains    decimal.Decimal
	NonDiscountGains decimal.Decimal

	NonDiscountAfterLoss decimal.Decimal
	DiscountAfterLoss    decimal.Decimal
	DiscountAmount       decimal.Decimal
	NetTaxableGain       decimal.Decimal

	// Loss not absorbed by any gain this period (a net capital loss).
	UnappliedLoss decimal.Decimal
}

// Aggregate computes the net taxable position of a set of sale records.
//
// Losses are applied to non-discount gains before discount-eligible gains,
// and only then is the discount taken on what remains of the eligible gains.
// This order must not be changed.
func Aggregate(records []*SaleRecord) *TaxSummary {
	s := &TaxSummary{
		NumSales:         len(records),
		UnitsSold:        decimal.Zero,
		GrossGain:        decimal.Zero,
		GrossLoss:        decimal.Zero,
		DiscountGains:    decimal.Zero,
		NonDiscountGains: decimal.Zero,
	}

	// Step 1 & 2: partition into gains and losses, and gains by eligibility.
	for _, r := range records {
		s.UnitsSold = s.UnitsSold.Add(r.Quantity)
		switch {
		case r.IsGain():
			s.GrossGain = s.GrossGain.Add(r.GainOrLoss)
			if r.DiscountEligible {
				s.DiscountGains = s.DiscountGains.Add(r.GainOrLoss)
			} else {
				s.NonDiscountGains = s.NonDiscountGains.Add(r.GainOrLoss)
			}
		case r.IsLoss():
			s.GrossLoss = s.GrossLoss.Add(r.GainOrLoss)
		}
	}
	s.NetGain = s.GrossGain.Add(s.GrossLoss)

	// Step 3
	remainingLoss := s.GrossLoss.Abs()

	// Step 4: non-discount gains absorb losses first.
	s.NonDiscountAfterLoss = decimal.Max(decimal.Zero, s.NonDiscountGains.Sub(remainingLoss))
	remainingLoss = decimal.Max(decimal.Zero, remainingLoss.Sub(s.NonDiscountGains))

	// Step 5
	s.DiscountAfterLoss = decimal.Max(decimal.Zero, s.DiscountGains.Sub(remainingLoss))
	s.UnappliedLoss = decimal.Max(decimal.Zero, remainingLoss.Sub(s.DiscountGains))

	// Step 6 & 7
	s.DiscountAmount = s.DiscountAfterLoss.Mul(DiscountRate)
	s.NetTaxableGain = s.NonDiscountAfterLoss.Add(s.DiscountAfterLoss.Sub(s.DiscountAmount))
	return s
}

type SecuritySummary struct {
	Security string
	NumSales int
	Gains    decimal.Decimal
	// Zero or negative
	Losses decimal.Decimal
}

func (s *SecuritySummary) Net() decimal.Decimal {
	return s.Gains.Add(s.Losses)
}

// SummarizeBySecurity returns one summary per security, sorted by security.
func SummarizeBySecurity(records []*SaleRecord) []*SecuritySummary {
	bySec := make(map[string]*SecuritySummary)
	for _, r := range records {
		sum, ok := bySec[r.Security]
		if !ok {
			sum = &SecuritySummary{Security: r.Security, Gains: decimal.Zero, Losses: decimal.Zero}
			bySec[r.Security] = sum
		}
		sum.NumSales++
		if r.IsGain() {
			sum.Gains = sum.Gains.Add(r.GainOrLoss)
		} else if r.IsLoss() {
			sum.Losses = sum.Losses.Add(r.GainOrLoss)
		}
	}

	out := make([]*SecuritySummary, 0, len(bySec))
	for _, sum := range bySec {
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Security < out[j].Security })
	return out
}
