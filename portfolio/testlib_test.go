package portfolio

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/util"
)

var DInt = decimal.NewFromInt
var DStr = decimal.RequireFromString

const DefaultTestSecurity string = "FOO"

func init() {
	util.AssertsPanic = true
}

func mkDateYD(year uint32, day int) date.Date {
	tm := date.New(year, time.January, 1)
	return tm.AddDays(day)
}

// Days are offset from 2020-01-01, so day 0 is 2020-01-01.
func mkDate(day int) date.Date {
	return mkDateYD(2020, day)
}

// Test Tx
type TTx struct {
	Sec   string
	Day   int       // Convenience for Date. Offset from 2020-01-01
	Date  date.Date // Overrides Day
	Act   TxAction
	Qty   decimal.Decimal
	Price decimal.Decimal
	Fee   decimal.Decimal
	Ref   string
}

// eXpand to full type.
func (t TTx) X() *Tx {
	d := util.Tern(t.Date.IsZero(), mkDate(t.Day), t.Date)
	ref := t.Ref
	if ref == "" {
		ref = fmt.Sprintf("%s-%s-%s", strings.ToLower(t.Act.String()), d, t.Qty)
	}
	return &Tx{
		Security:  util.Tern(t.Sec == "", DefaultTestSecurity, t.Sec),
		Date:      d,
		Action:    t.Act,
		Quantity:  t.Qty,
		Price:     t.Price,
		Fee:       t.Fee,
		Reference: ref,
	}
}

func txs(tts ...TTx) []*Tx {
	out := make([]*Tx, 0, len(tts))
	for i, tt := range tts {
		tx := tt.X()
		tx.ReadIndex = uint32(i)
		out = append(out, tx)
	}
	return out
}

func decimalTestEqual(a, b decimal.Decimal) bool {
	return a.Equal(b)
}

// Use this instead of require.New if any type needing comparison contains a
// decimal.Decimal.
type CustomRequire struct {
	*require.Assertions
	t       *testing.T
	options cmp.Options
}

func NewCustomRequire(t *testing.T) *CustomRequire {
	return &CustomRequire{require.New(t), t, []cmp.Option{
		cmp.Comparer(decimalTestEqual),
		cmp.AllowUnexported(date.Date{}),
	}}
}

func (rq *CustomRequire) DeepEqual(expected, actual interface{}) {
	diff := cmp.Diff(expected, actual, rq.options)
	require.True(rq.t, diff == "", diff)
}

func (rq *CustomRequire) DecEqual(expected, actual decimal.Decimal, msgAndArgs ...interface{}) {
	if !expected.Equal(actual) {
		require.FailNow(rq.t, fmt.Sprintf("decimals not equal: expected %s, actual %s", expected, actual),
			msgAndArgs...)
	}
}

// Compares against an expected value as a string, eg. "12.5"
func (rq *CustomRequire) DecStrEqual(expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	rq.DecEqual(DStr(expected), actual, msgAndArgs...)
}
