package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/markphelps/optional"
	"github.com/spf13/cobra"

	"github.com/tsiemens/cgt/app"
	"github.com/tsiemens/cgt/app/outfmt"
	"github.com/tsiemens/cgt/config"
	"github.com/tsiemens/cgt/log"
	ptf "github.com/tsiemens/cgt/portfolio"
	"github.com/tsiemens/cgt/tradefile"
)

var (
	ConfigPath   string
	BasePath     string
	DateFormat   string
	Year         int
	CalendarYear bool
	Ticker       string
	CsvOutDir    string
	MarkdownOut  string
	HtmlOut      string
	AllDecimals  bool
	Watch        bool
)

// Loaded in PersistentPreRunE, with flags applied over it.
var cfg *config.Config

func loadConfig(cmd *cobra.Command) error {
	var err error
	if ConfigPath != "" {
		cfg, err = config.LoadAndValidate(ConfigPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath())
		if err == nil {
			err = cfg.Validate()
		}
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-path") {
		cfg.BasePath = BasePath
	}
	if flags.Changed("date-fmt") {
		cfg.DateFormat = DateFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if CalendarYear {
		cfg.FiscalYearStartMonth = 1
	}
	ptf.CsvDateFormat = cfg.DateFormat
	tradefile.DateFormat = cfg.DateFormat
	log.Tracef("config", "%+v", *cfg)
	return nil
}

// tradeBasePath is "" if there are no trade files to read. A base path which
// was asked for explicitly must exist.
func tradeBasePath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("base-path") {
		return cfg.BasePath
	}
	if fi, err := os.Stat(cfg.BasePath); err == nil && fi.IsDir() {
		return cfg.BasePath
	}
	log.Fverbosef(os.Stderr, "No trades directory at %s\n", cfg.BasePath)
	return ""
}

func openCsvs(paths []string) ([]app.DescribedReader, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, fp := range files {
			fp.Close()
		}
	}
	readers := make([]app.DescribedReader, 0, len(paths))
	for _, p := range paths {
		fp, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("Opening CSV: %w", err)
		}
		files = append(files, fp)
		readers = append(readers, app.DescribedReader{Desc: p, Reader: fp})
	}
	return readers, closeAll, nil
}

func reportOptions(cmd *cobra.Command) app.Options {
	options := app.Options{
		StartMonth:             cfg.StartMonth(),
		RenderFullDollarValues: AllDecimals,
	}
	if Ticker != "" {
		options.Security = optional.NewString(strings.ToUpper(Ticker))
	}
	if cmd.Flags().Changed("year") {
		options.Period = ptf.FiscalYear{EndYear: Year, StartMonth: cfg.StartMonth()}
	}
	return options
}

// reportWriter writes to stdout, and to whichever report files were asked for.
func reportWriter(title string) (outfmt.MultiWriter, error) {
	writers := outfmt.MultiWriter{outfmt.NewSTDWriter(os.Stdout)}
	if CsvOutDir != "" {
		csvWriter, err := outfmt.NewCSVWriter(CsvOutDir)
		if err != nil {
			return nil, err
		}
		writers = append(writers, csvWriter)
	}
	if MarkdownOut != "" {
		writers = append(writers, outfmt.NewMarkdownWriter(MarkdownOut, title))
	}
	if HtmlOut != "" {
		writers = append(writers, outfmt.NewHTMLWriter(HtmlOut, title))
	}
	return writers, nil
}

func runReport(cmd *cobra.Command, csvPaths []string) error {
	options := reportOptions(cmd)
	writer, err := reportWriter(app.ReportTitle(options))
	if err != nil {
		return err
	}
	csvReaders, closeCsvs, err := openCsvs(csvPaths)
	if err != nil {
		return err
	}
	defer closeCsvs()

	errPrinter := &log.StderrErrorPrinter{}
	runErr := app.RunCgtApp(csvReaders, tradeBasePath(cmd), options, writer, errPrinter)
	if err := writer.Close(); err != nil {
		return err
	}
	return runErr
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	if !Watch {
		return runReport(cmd, args)
	}

	basePath := tradeBasePath(cmd)
	if basePath == "" {
		return fmt.Errorf("--watch requires a trades directory (--base-path)")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return app.WatchTrades(ctx, basePath, app.DefaultWatchDebounce, func() error {
		fmt.Fprintf(os.Stdout, "\n==== %s ====\n", filepath.Clean(basePath))
		return runReport(cmd, args)
	}, &log.StderrErrorPrinter{})
}

func cmdName() string {
	binName := os.Args[0]
	return filepath.Base(binName)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   cmdName() + " [CSV_FILE ...]",
	Short: "Australian capital gains tax calculation tool",
	Long: fmt.Sprintf(
		`A cli tool which computes capital gains and losses on share and ETF sales,
matching each sell to the earliest remaining buys (FIFO).

Gains on units held more than %d days are eligible for the 50%% CGT discount,
which is applied after losses are offset against non-discount gains first.

Transactions are read from <base-path>/<year>/*.md trade files, each with a
YAML frontmatter block, and from any CSV provided. Each CSV should contain a
header with these column names:
%s
`, ptf.LongTermHoldingDays, strings.Join(ptf.ColNames, ", ")),
	RunE:              runRootCmd,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig(cmd) },
	SilenceUsage:      true,
	SilenceErrors:     true,
	Version:           app.CgtVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags, which are global to the app cli
	pflags := RootCmd.PersistentFlags()
	pflags.BoolVarP(&log.VerboseEnabled, "verbose", "v", false,
		"Print verbose output")
	pflags.StringVar(&ConfigPath, "config", "",
		"Config file (default ~/.cgt/config.yaml, if it exists)")
	pflags.StringVar(&BasePath, "base-path", config.DefaultBasePath,
		"Directory containing <year>/*.md trade files")
	pflags.StringVar(&DateFormat, "date-fmt", config.DefaultDateFormat,
		"Format of how dates appear in trade files and CSVs. Must represent Jan 2, 2006")
	pflags.BoolVar(&CalendarYear, "calendar-year", false,
		"Years are calendar years, rather than 1 Jul - 30 Jun tax years")
	pflags.BoolVar(&AllDecimals, "all-decimals", false,
		"Print dollar values with full precision, rather than rounded to cents")
	pflags.StringVar(&CsvOutDir, "csv-dir", "",
		"Also write each table as a CSV file in this directory")

	flags := RootCmd.Flags()
	flags.IntVarP(&Year, "year", "y", 0,
		"Only report sales in this tax year (named by the year it ends in, eg. 2025 "+
			"for 1 Jul 2024 - 30 Jun 2025)")
	flags.StringVarP(&Ticker, "ticker", "t", "", "Only report on this security")
	flags.StringVar(&MarkdownOut, "markdown", "", "Also write the report as markdown to this file")
	flags.StringVar(&HtmlOut, "html", "", "Also write the report as HTML to this file")
	flags.BoolVarP(&Watch, "watch", "w", false,
		"Re-run the report whenever a trade file changes")

	RootCmd.AddCommand(holdingsCmd, summaryCmd)
}
