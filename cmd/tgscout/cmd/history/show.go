package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"tgscout/internal/report"
	"tgscout/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var flaggedOnly bool

func init() {
	showCmd.Flags().BoolVar(&flaggedOnly, "flagged", false, "only list the flagged channels")
	RootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <crawl-id>",
	Short: "Shows the ranked channels of a recorded crawl.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("crawl id must be a number", err)
		}

		s := open(cmd)
		defer s.Close()

		crawl, err := s.Crawl(cmd.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Fprintf(os.Stderr, "crawl %d does not exist\n", id)
			os.Exit(1)
		}
		if err != nil {
			serviceutil.Fatal("failed to read crawl", err)
		}
		channels, err := s.CrawlChannels(cmd.Context(), id)
		if err != nil {
			serviceutil.Fatal("failed to read crawl channels", err)
		}

		fmt.Printf("Crawl %d of %s (%s mode, %s)\n", crawl.ID, crawl.SeedURL, crawl.Mode, formatTime(crawl.StartedAt))
		fmt.Printf("Average quality score: %.1f\n", crawl.AverageScore)

		t := report.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"#", "Channel", "Members", "Score", "Category", "URL"})
		for _, c := range channels {
			if flaggedOnly && !c.Flagged {
				continue
			}
			name := c.Text
			if c.Flagged {
				name += " *"
			}
			t.AppendRow(table.Row{c.Rank, name, c.Members, c.Score, c.Category, c.URL})
		}
		t.Render()
	},
}
