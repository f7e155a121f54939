package cmd

import (
	"time"

	"tgscout/internal/config"

	"github.com/spf13/cobra"
)

// crawlFlags override the config, but only the ones given on the command line.
type crawlFlags struct {
	maxPages  int
	threshold float64
	delay     time.Duration
	csvPath   string
	dsn       string
	top       int
	notify    bool
	dumpDir   string
	rps       float64
}

func (f *crawlFlags) register(cmd *cobra.Command) {
	defaults := config.Default()

	flags := cmd.Flags()
	flags.IntVar(&f.maxPages, "max-pages", defaults.Crawl.MaxPages, "maximum number of pages to crawl")
	flags.Float64Var(&f.threshold, "threshold", defaults.Crawl.ThresholdPercent, "flag channels scoring this many percent above the average")
	flags.DurationVar(&f.delay, "delay", defaults.Crawl.Delay(), "pause between two requests")
	flags.StringVar(&f.csvPath, "csv", defaults.Output.CSVPath, "csv export path, empty disables the export")
	flags.StringVar(&f.dsn, "db", "", "history database, a sqlite path or a libsql url")
	flags.IntVar(&f.top, "top", defaults.Output.Top, "number of channels to print, 0 prints all")
	flags.BoolVar(&f.notify, "notify", false, "send flagged channels to the notifiers enabled in the config")
	flags.StringVar(&f.dumpDir, "dump-dir", "", "write every http exchange to this directory")
	flags.Float64Var(&f.rps, "rps", 0, "maximum requests per second, 0 is unlimited")
}

func (f *crawlFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		cfg.Crawl.MaxPages = f.maxPages
	}
	if flags.Changed("threshold") {
		cfg.Crawl.ThresholdPercent = f.threshold
	}
	if flags.Changed("delay") {
		cfg.Crawl.DelayMs = int(f.delay / time.Millisecond)
	}
	if flags.Changed("csv") {
		cfg.Output.CSVPath = f.csvPath
	}
	if flags.Changed("db") {
		cfg.Store.DSN = f.dsn
	}
	if flags.Changed("top") {
		cfg.Output.Top = f.top
	}
	if flags.Changed("dump-dir") {
		cfg.Crawl.DumpDir = f.dumpDir
	}
	if flags.Changed("rps") {
		cfg.Crawl.RequestsPerSecond = f.rps
	}
}
