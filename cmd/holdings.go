package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsiemens/cgt/app"
	"github.com/tsiemens/cgt/log"
	"github.com/tsiemens/cgt/prices"
)

var (
	HoldingsYears []int
	NoPrices      bool
	ForceDownload bool
)

// pricesCacheDir defaults to ~/.cgt/prices
func pricesCacheDir() string {
	if cfg.Prices.CacheDir != "" {
		return cfg.Prices.CacheDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cgt-prices")
	}
	return filepath.Join(home, ".cgt", "prices")
}

func newPriceLoader(errPrinter log.ErrorPrinter) *prices.PriceLoader {
	source := prices.NewYahooChartSource(cfg.Prices.URL, cfg.Prices.UserAgent, cfg.Prices.Timeout)
	pricesCache := prices.NewCsvPricesCacheAccessor(pricesCacheDir(), errPrinter)
	return prices.NewPriceLoader(source, pricesCache, cfg.Prices.SymbolSuffix,
		ForceDownload, cfg.Prices.Concurrency, errPrinter)
}

func runHoldingsCmd(cmd *cobra.Command, args []string) error {
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

	var priceGetter app.ClosePriceGetter
	if !NoPrices {
		priceGetter = newPriceLoader(errPrinter)
	}

	writer, err := reportWriter("Holdings")
	if err != nil {
		return err
	}
	options := app.HoldingsOptions{
		Years:                  HoldingsYears,
		StartMonth:             cfg.StartMonth(),
		RenderFullDollarValues: AllDecimals,
	}
	runErr := app.RunHoldingsApp(cmd.Context(), txs, options, priceGetter, writer, errPrinter)
	if err := writer.Close(); err != nil {
		return err
	}
	return runErr
}

var holdingsCmd = &cobra.Command{
	Use:   "holdings [CSV_FILE ...]",
	Short: "Show the holdings at the end of each tax year",
	Long: `Shows the units and cost base held of each security at the end of each
completed tax year, valued at that day's closing prices.

Prices are downloaded once per symbol and year, and completed years are
cached under the prices cache_dir (default ~/.cgt/prices).

A tax year index follows, with the value bought and sold in each year beside
the value of the holdings at its end.`,
	RunE: runHoldingsCmd,
}

func init() {
	flags := holdingsCmd.Flags()
	flags.IntSliceVarP(&HoldingsYears, "year", "y", nil,
		"Tax years to show holdings at the end of. May be provided multiple times. "+
			"Defaults to every year since the first transaction.")
	flags.BoolVar(&NoPrices, "no-prices", false, "Do not look up closing prices")
	flags.BoolVarP(&ForceDownload, "force-download", "f", false,
		"Download prices, even if they are cached")
}
