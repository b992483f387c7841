package app

import (
	"fmt"
	"io"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
	ptf "github.com/tsiemens/cgt/portfolio"
)

// RunSummaryApp writes, as CSV, txs that can replace every tx up to and
// including asOf. See portfolio.MakeSummaryTxs.
func RunSummaryApp(txs []*ptf.Tx, asOf date.Date, w io.Writer, errPrinter log.ErrorPrinter) error {
	summaryTxs, warnings, err := ptf.MakeSummaryTxs(asOf, txs)
	for _, warning := range warnings {
		errPrinter.Ln("Warning:", warning)
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, ptf.ToCsvString(summaryTxs)); err != nil {
		return fmt.Errorf("Writing summary: %w", err)
	}
	return nil
}
