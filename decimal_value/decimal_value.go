package decimal_value

import (
	"github.com/shopspring/decimal"
)

// Null is used where a value could not be determined, such as a holding
// whose price could not be looked up. Arithmetic with a Null is Null.
var Null = DecimalOpt{IsNull: true}

type DecimalOpt struct {
	Decimal decimal.Decimal
	IsNull  bool
}

func New(value decimal.Decimal) DecimalOpt {
	return DecimalOpt{Decimal: value}
}

func (d DecimalOpt) Mul(d2 DecimalOpt) DecimalOpt {
	if d.IsNull || d2.IsNull {
		return Null
	}
	return DecimalOpt{Decimal: d.Decimal.Mul(d2.Decimal)}
}

func (d DecimalOpt) MulD(d2 decimal.Decimal) DecimalOpt {
	return d.Mul(New(d2))
}

func (d DecimalOpt) SubD(d2 decimal.Decimal) DecimalOpt {
	if d.IsNull {
		return Null
	}
	return DecimalOpt{Decimal: d.Decimal.Sub(d2)}
}

// OrZero returns the value, or zero if it is null.
func (d DecimalOpt) OrZero() decimal.Decimal {
	if d.IsNull {
		return decimal.Zero
	}
	return d.Decimal
}

func (d DecimalOpt) String() string {
	if d.IsNull {
		return "NaN"
	}
	return d.Decimal.String()
}
