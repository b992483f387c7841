package portfolio

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
)

// Disposals held for longer than this many days are long-term, and their gains
// eligible for the CGT discount.
const LongTermHoldingDays = 365

type TxAction int

const (
	NO_ACTION TxAction = iota
	BUY
	SELL
)

func (a TxAction) String() string {
	switch a {
	case BUY:
		return "Buy"
	case SELL:
		return "Sell"
	default:
		return "Invalid"
	}
}

// ParseTxAction is case-insensitive. Anything other than buy or sell produces
// NO_ACTION and an error, which the matching engine will skip.
func ParseTxAction(s string) (TxAction, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "buy":
		return BUY, nil
	case "sell":
		return SELL, nil
	default:
		return NO_ACTION, fmt.Errorf("Invalid action: '%s'", s)
	}
}

type Tx struct {
	Security  string
	Date      date.Date
	Action    TxAction
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Fee       decimal.Decimal
	Reference string
	Memo      string
	// Where the tx was read from (file path, CSV description...)
	Source string
	// The order in which the tx was read. Used as a secondary sort key.
	ReadIndex uint32
}

func (t *Tx) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s (fee %s) [%s]",
		t.Date, t.Action, t.Quantity, t.Security, t.Price, t.Fee, t.Reference)
}

// Value is the gross amount of the tx, excluding fees.
func (t *Tx) Value() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// AcquisitionLot is an open parcel of units from a single BUY. It is owned by
// exactly one LotLedger.
type AcquisitionLot struct {
	Security          string
	AcquiredDate      date.Date
	OriginalQuantity  decimal.Decimal
	RemainingQuantity decimal.Decimal
	UnitPrice         decimal.Decimal
	Fee               decimal.Decimal
	FeePerUnit        decimal.Decimal
	Reference         string
}

func NewAcquisitionLot(tx *Tx) *AcquisitionLot {
	feePerUnit := decimal.Zero
	if tx.Quantity.IsPositive() {
		feePerUnit = tx.Fee.Div(tx.Quantity)
	}
	return &AcquisitionLot{
		Security:          tx.Security,
		AcquiredDate:      tx.Date,
		OriginalQuantity:  tx.Quantity,
		RemainingQuantity: tx.Quantity,
		UnitPrice:         tx.Price,
		Fee:               tx.Fee,
		FeePerUnit:        feePerUnit,
		Reference:         tx.Reference,
	}
}

// FeeShare is the portion of the buy fee attributable to q units of the lot.
// This is q * FeePerUnit, but computed without the intermediate division so
// that splitting a lot does not accumulate rounding.
func (l *AcquisitionLot) FeeShare(q decimal.Decimal) decimal.Decimal {
	switch {
	case l.OriginalQuantity.IsZero() || q.IsZero():
		return decimal.Zero
	case q.Equal(l.OriginalQuantity):
		return l.Fee
	}
	return q.Mul(l.Fee).Div(l.OriginalQuantity)
}

// RemainingFee is the buy fee not yet allocated to any disposal.
func (l *AcquisitionLot) RemainingFee() decimal.Decimal {
	sold := l.OriginalQuantity.Sub(l.RemainingQuantity)
	return l.Fee.Sub(l.FeeShare(sold))
}

func (l *AcquisitionLot) String() string {
	return fmt.Sprintf("%s units @ %s on %s", l.RemainingQuantity, l.UnitPrice.StringFixed(2), l.AcquiredDate)
}

// SaleRecord is the gain or loss of one disposal against one acquisition lot.
// A SELL spanning several lots produces one record per lot.
type SaleRecord struct {
	AcquiredDate      date.Date
	SoldDate          date.Date
	Security          string
	Quantity          decimal.Decimal
	UnitCost          decimal.Decimal
	CostBasis         decimal.Decimal // includes the buy fee share
	UnitSalePrice     decimal.Decimal
	Proceeds          decimal.Decimal // excludes the sell fee
	SellFee           decimal.Decimal
	GainOrLoss        decimal.Decimal
	AcquiredReference string
	SoldReference     string
	DaysHeld          int
	HeldLongTerm      bool
	DiscountEligible  bool
}

func (r *SaleRecord) IsGain() bool {
	return r.GainOrLoss.IsPositive()
}

func (r *SaleRecord) IsLoss() bool {
	return r.GainOrLoss.IsNegative()
}

func (r *SaleRecord) String() string {
	return fmt.Sprintf("%s: %s units | Acquired %s @ %s | Sold %s @ %s | Gain/Loss: %s",
		r.Security, r.Quantity, r.AcquiredDate, r.UnitCost.StringFixed(2),
		r.SoldDate, r.UnitSalePrice.StringFixed(2), r.GainOrLoss.StringFixed(2))
}

// UnmatchedDisposal is the part of a SELL for which there were no open lots.
// This is a data integrity problem (missing buys, or a short sale), and is
// never folded into the sale records.
type UnmatchedDisposal struct {
	Security  string
	Date      date.Date
	Reference string
	Requested decimal.Decimal
	Unmatched decimal.Decimal
}

func (u *UnmatchedDisposal) String() string {
	ref := ""
	if u.Reference != "" {
		ref = " [" + u.Reference + "]"
	}
	return fmt.Sprintf("Sell on %s of %s units of %s%s exceeds open lots by %s units",
		u.Date, u.Requested, u.Security, ref, u.Unmatched)
}

// SkippedTx is a transaction the matching engine could not use.
type SkippedTx struct {
	Tx     *Tx
	Reason string
}

func (s SkippedTx) String() string {
	src := s.Tx.Source
	if src == "" {
		src = s.Tx.Reference
	}
	return fmt.Sprintf("Skipped transaction on %s (%s): %s", s.Tx.Date, src, s.Reason)
}
