package portfolio

import (
	"strings"
	"testing"
)

func TestParseTxCsv(t *testing.T) {
	rq := NewCustomRequire(t)

	csvStr := `Ticker,Date,Action,Shares,Amount/Share,Commission,Reference,Memo,Extra
cba,2024-01-02,buy,100,"$1,010.50",9.95,ref1,first buy,x
CBA,2024-03-04,SELL,40,$1100,9.95,ref2,,
CBA,2024-05-01,dividend,0,1.2,,ref3,,
CBA,2024-05-02,buy,abc,1,,ref4,,
,2024-05-03,buy,1,1,,ref5,,
CBA,,buy,1,1,,ref6,,
`
	parsed, warnings, err := ParseTxCsv(strings.NewReader(csvStr), 10, "test.csv")
	rq.NoError(err)

	rq.Len(parsed, 3)
	rq.DeepEqual(&Tx{
		Security: "CBA", Date: mkDateYD(2024, 1), Action: BUY,
		Quantity: DInt(100), Price: DStr("1010.50"), Fee: DStr("9.95"),
		Reference: "ref1", Memo: "first buy", Source: "test.csv:2", ReadIndex: 10,
	}, parsed[0])
	rq.Equal(SELL, parsed[1].Action)
	rq.DecStrEqual("1100", parsed[1].Price)
	rq.Equal(uint32(11), parsed[1].ReadIndex)
	// Unknown actions are kept, and left for the engine to skip
	rq.Equal(NO_ACTION, parsed[2].Action)
	rq.DecStrEqual("0", parsed[2].Fee)

	rq.Len(warnings, 4)
	rq.Equal(`Unrecognized column "extra" in test.csv`, warnings[0])
	rq.Contains(warnings[1], "Skipping test.csv:5")
	rq.Contains(warnings[1], "quantity")
	rq.Contains(warnings[2], "no security")
	rq.Contains(warnings[3], "no date")
}

func TestParseTxCsvEmpty(t *testing.T) {
	rq := NewCustomRequire(t)

	_, _, err := ParseTxCsv(strings.NewReader(""), 0, "empty.csv")
	rq.ErrorContains(err, "No rows found in empty.csv")

	parsed, _, err := ParseTxCsv(strings.NewReader("security,date\n"), 0, "header.csv")
	rq.NoError(err)
	rq.Len(parsed, 0)
}

func TestCsvRoundTrip(t *testing.T) {
	rq := NewCustomRequire(t)

	in := txs(
		TTx{Day: 0, Act: BUY, Qty: DStr("1.5"), Price: DStr("10.25"), Fee: DInt(1), Ref: "a"},
		TTx{Day: 4, Act: SELL, Qty: DStr("1.5"), Price: DStr("11"), Fee: DInt(0), Ref: "b"},
	)
	in[0].Memo = "with, comma"
	out, _, err := ParseTxCsv(strings.NewReader(ToCsvString(in)), 0, "rt")
	rq.NoError(err)
	rq.Len(out, 2)
	for i := range in {
		in[i].Source = out[i].Source
		rq.DeepEqual(in[i], out[i])
	}
}

func TestSortedColNames(t *testing.T) {
	rq := NewCustomRequire(t)
	names := SortedColNames()
	rq.Contains(names, "ticker")
	rq.Contains(names, "commission")
	rq.Len(names, len(colParserMap))
}
