package cmd

import (
	"errors"
	"os"

	"tgscout/cmd/tgscout/globals"

	"github.com/spf13/cobra"
)

var crawlOpts crawlFlags

var crawlCmd = &cobra.Command{
	Use:   "crawl <listing-url>",
	Short: "Crawl a tgstat listing once, then score and rank its channels.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config
		crawlOpts.apply(cmd, &cfg)

		p := newPipeline(cmd.Context(), cfg, g.Telemetry, os.Stdout)
		defer p.close()

		outcome := p.ranker.Run(cmd.Context(), p.options(args[0], cfg, crawlOpts.notify))
		// the ranking is printed even when a sink failed.
		return errors.Join(outcome.Errors...)
	},
}

func init() {
	crawlOpts.register(crawlCmd)
	rootCmd.AddCommand(crawlCmd)
}
