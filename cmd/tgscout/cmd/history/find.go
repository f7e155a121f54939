package history

import (
	"fmt"
	"os"
	"strings"

	"tgscout/internal/report"
	"tgscout/internal/store"
	"tgscout/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var minSimilarity float64

func init() {
	findCmd.Flags().Float64Var(&minSimilarity, "similarity", store.DefaultMinSimilarity, "lowest jaro-winkler similarity to list")
	RootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Finds recorded channels by a fuzzy match on their name or username.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := open(cmd)
		defer s.Close()

		matches, err := s.FindChannels(cmd.Context(), strings.Join(args, " "), minSimilarity, limit)
		if err != nil {
			serviceutil.Fatal("failed to search channels", err)
		}
		if len(matches) == 0 {
			fmt.Println("No matching channels.")
			return
		}

		t := report.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"Match", "Channel", "Members", "Score", "Crawl", "URL"})
		for _, m := range matches {
			t.AppendRow(table.Row{
				fmt.Sprintf("%.2f", m.Similarity),
				m.Text,
				m.Members,
				m.Score,
				m.CrawlID,
				m.URL,
			})
		}
		t.Render()
	},
}
