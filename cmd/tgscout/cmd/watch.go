package cmd

import (
	"os"

	"tgscout/cmd/tgscout/globals"
	"tgscout/internal/components/chrono"
	"tgscout/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	watchOpts     crawlFlags
	watchSchedule string
)

var watchCmd = &cobra.Command{
	Use:   "watch <listing-url>",
	Short: "Crawl a tgstat listing on a schedule and notify about newly flagged channels.",
	Long: `watch crawls the listing right away and then on every tick of --schedule,
until interrupted. A flagged channel is only notified about once per process.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())
		cfg := g.Config
		watchOpts.apply(cmd, &cfg)

		p := newPipeline(cmd.Context(), cfg, g.Telemetry, os.Stdout)
		defer p.close()

		cron := chrono.NewStandardCron(g.Telemetry)
		err := p.ranker.Watch(cmd.Context(), cron, watchSchedule, p.options(args[0], cfg, watchOpts.notify))
		if err != nil {
			serviceutil.Fatal("watch", err)
		}
	},
}

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "@every 6h", "cron expression or descriptor for the crawls")
	rootCmd.AddCommand(watchCmd)
}
