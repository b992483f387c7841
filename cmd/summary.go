package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsiemens/cgt/app"
	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
)

var SummaryAsOf string

func runSummaryCmd(cmd *cobra.Command, args []string) error {
	asOf, err := date.Parse(cfg.DateFormat, SummaryAsOf)
	if err != nil {
		return fmt.Errorf("Invalid --as-of date: %w", err)
	}

	errPrinter := &log.StderrErrorPrinter{}
	csvReaders, closeCsvs, err := openCsvs(args)
	if err != nil {
		return err
	}
	defer closeCsvs()

	txs, err := app.ReadTxs(csvReaders, tradeBasePath(cmd), errPrinter)
	if err != nil {
		return err
	}
	return app.RunSummaryApp(txs, asOf, os.Stdout, errPrinter)
}

var summaryCmd = &cobra.Command{
	Use:   "summary --as-of DATE [CSV_FILE ...]",
	Short: "Print a CSV of buys which stand in for all transactions up to a date",
	Long: `Prints, as CSV, one buy per acquisition lot still open at the end of DATE.

The output can replace every transaction up to and including DATE, to keep
the history short without changing later gains.`,
	RunE: runSummaryCmd,
}

func init() {
	summaryCmd.Flags().StringVar(&SummaryAsOf, "as-of", "", "Last date to summarize (inclusive)")
	summaryCmd.MarkFlagRequired("as-of")
}
