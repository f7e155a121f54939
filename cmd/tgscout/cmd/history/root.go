package history

import (
	"fmt"
	"os"
	"time"

	"tgscout/cmd/tgscout/globals"
	"tgscout/internal/report"
	"tgscout/internal/store"
	"tgscout/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	dsn   string
	limit int
)

var RootCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists the crawls recorded in the history database.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := open(cmd)
		defer s.Close()

		crawls, err := s.ListCrawls(cmd.Context(), limit)
		if err != nil {
			serviceutil.Fatal("failed to list crawls", err)
		}
		if len(crawls) == 0 {
			fmt.Println("No crawls recorded yet.")
			return
		}

		t := report.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Started", "Seed", "Mode", "Channels", "Flagged", "Average", ""})
		for _, c := range crawls {
			status := ""
			if c.Cancelled {
				status = "interrupted"
			}
			t.AppendRow(table.Row{
				c.ID,
				formatTime(c.StartedAt),
				c.SeedURL,
				c.Mode,
				c.ChannelCount,
				c.FlaggedCount,
				fmt.Sprintf("%.1f", c.AverageScore),
				status,
			})
		}
		t.Render()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dsn, "db", "", "history database, defaults to store.dsn from the config")
	RootCmd.PersistentFlags().IntVar(&limit, "limit", 20, "maximum number of rows to list")
}

func open(cmd *cobra.Command) *store.Store {
	g := globals.Get(cmd.Context())
	target := dsn
	if target == "" {
		target = g.Config.Store.DSN
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "no history database, pass --db or set store.dsn in the config")
		os.Exit(1)
	}

	s, err := store.Open(cmd.Context(), target, g.Telemetry)
	if err != nil {
		serviceutil.Fatal("failed to open history store", err)
	}
	return s
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).Format(time.DateTime)
}
