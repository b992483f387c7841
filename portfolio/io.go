package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
)

var CsvDateFormat string = date.DefaultFormat

type ColParser func(string, *Tx) error

var colParserMap = map[string]ColParser{
	"security":     parseSecurity,
	"ticker":       parseSecurity,
	"date":         parseDate,
	"action":       parseAction,
	"quantity":     parseQuantity,
	"shares":       parseQuantity,
	"price":        parsePrice,
	"amount/share": parsePrice,
	"fee":          parseFee,
	"commission":   parseFee,
	"reference":    parseReference,
	"memo":         parseMemo,
}

// Column names, as written by ToCsvString. Aliases are also accepted on read.
var ColNames = []string{"security", "date", "action", "quantity", "price", "fee", "reference", "memo"}

func DefaultTx() *Tx {
	return &Tx{
		Action:   NO_ACTION,
		Quantity: decimal.Zero, Price: decimal.Zero, Fee: decimal.Zero,
	}
}

// ParseTxCsv reads txs from a CSV with a header row. A row which cannot be
// parsed is dropped with a warning, so one bad row does not prevent a report.
// Errors are only returned if the CSV itself is unreadable.
//
// Return: txs, user warnings, error
func ParseTxCsv(reader io.Reader, initialReadIndex uint32, csvDesc string) ([]*Tx, []string, error) {
	csvR := csv.NewReader(reader)
	csvR.FieldsPerRecord = -1
	csvR.TrimLeadingSpace = true
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to parse CSV %s: %w", csvDesc, err)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("No rows found in %s", csvDesc)
	}

	var warnings []string
	header := records[0]
	colParsers := make([]ColParser, len(header))
	for i, col := range header {
		sanCol := strings.TrimSpace(strings.ToLower(col))
		if parser, ok := colParserMap[sanCol]; ok {
			colParsers[i] = parser
		} else {
			warnings = append(warnings, fmt.Sprintf("Unrecognized column %q in %s", sanCol, csvDesc))
			colParsers[i] = parseNothing
		}
	}

	txs := make([]*Tx, 0, len(records)-1)
	readIndex := initialReadIndex
	for i, record := range records[1:] {
		tx := DefaultTx()
		tx.Source = fmt.Sprintf("%s:%d", csvDesc, i+2)

		var rowErr error
		for j, col := range record {
			if j >= len(colParsers) {
				break
			}
			if err := colParsers[j](strings.TrimSpace(col), tx); err != nil {
				rowErr = fmt.Errorf("column %q: %w", header[j], err)
				break
			}
		}
		if rowErr == nil {
			rowErr = checkParsedTx(tx)
		}
		if rowErr != nil {
			warnings = append(warnings, fmt.Sprintf("Skipping %s: %v", tx.Source, rowErr))
			continue
		}
		tx.ReadIndex = readIndex
		readIndex++
		txs = append(txs, tx)
	}
	return txs, warnings, nil
}

func checkParsedTx(tx *Tx) error {
	if tx.Security == "" {
		return fmt.Errorf("Transaction has no security")
	} else if tx.Date.IsZero() {
		return fmt.Errorf("Transaction has no date")
	}
	return nil
}

func parseNothing(data string, tx *Tx) error {
	return nil
}

func parseSecurity(data string, tx *Tx) error {
	tx.Security = strings.ToUpper(data)
	return nil
}

func parseDate(data string, tx *Tx) error {
	if data == "" {
		return nil
	}
	d, err := date.Parse(CsvDateFormat, data)
	if err != nil {
		return err
	}
	tx.Date = d
	return nil
}

// Unknown actions (eg. dividends) are kept as NO_ACTION, and later skipped
// by the matching engine with a diagnostic.
func parseAction(data string, tx *Tx) error {
	tx.Action, _ = ParseTxAction(data)
	return nil
}

func parseDecimal(data string, what string) (decimal.Decimal, error) {
	if data == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(data, "$"), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("Error parsing %s: %w", what, err)
	}
	return d, nil
}

func parseQuantity(data string, tx *Tx) (err error) {
	tx.Quantity, err = parseDecimal(data, "quantity")
	return
}

func parsePrice(data string, tx *Tx) (err error) {
	tx.Price, err = parseDecimal(data, "price")
	return
}

func parseFee(data string, tx *Tx) (err error) {
	tx.Fee, err = parseDecimal(data, "fee")
	return
}

func parseReference(data string, tx *Tx) error {
	tx.Reference = data
	return nil
}

func parseMemo(data string, tx *Tx) error {
	tx.Memo = data
	return nil
}

// ToCsvString writes txs in the format read by ParseTxCsv.
func ToCsvString(txs []*Tx) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(ColNames)
	for _, tx := range txs {
		w.Write([]string{
			tx.Security,
			tx.Date.Format(CsvDateFormat),
			tx.Action.String(),
			tx.Quantity.String(),
			tx.Price.String(),
			tx.Fee.String(),
			tx.Reference,
			tx.Memo,
		})
	}
	w.Flush()
	return b.String()
}

// SortedColNames lists every accepted column name, including aliases.
func SortedColNames() []string {
	names := make([]string, 0, len(colParserMap))
	for name := range colParserMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
