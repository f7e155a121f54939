package report

import (
	"fmt"
	"io"

	"tgscout/internal/channel"
	"tgscout/internal/ranking"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Summary prints the channel count, the average score and how many channels got flagged.
func Summary(w io.Writer, evaluation ranking.Evaluation) {
	fmt.Fprintf(w, "Channels found: %d\n", len(evaluation.Sorted))
	fmt.Fprintf(w, "Average quality score: %.1f\n", evaluation.Average)
	fmt.Fprintf(w, "High-quality channels: %d\n", len(evaluation.Flagged))
}

// Top renders the first n channels of a sorted list, n <= 0 renders all of them.
func Top(w io.Writer, sorted []channel.Scored, n int) {
	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}

	t := NewTable(w)
	t.SetTitle(fmt.Sprintf("Top %d channels", n))
	t.AppendHeader(table.Row{"#", "Channel", "Subscribers", "Score", "URL"})
	for i, s := range sorted[:n] {
		t.AppendRow(table.Row{i + 1, s.Text, s.Members.String(), s.Score, s.URL})
	}
	t.Render()
}

// Flagged renders the channels scoring well above the average.
func Flagged(w io.Writer, flagged []ranking.Flagged) {
	if len(flagged) == 0 {
		return
	}

	t := NewTable(w)
	t.SetTitle("High-quality channels")
	t.AppendHeader(table.Row{"Channel", "Score", "Above average", "URL"})
	for _, f := range flagged {
		t.AppendRow(table.Row{
			f.Text,
			f.Score,
			fmt.Sprintf("+%.1f%%", f.PercentAboveAverage),
			f.URL,
		})
	}
	t.Render()
}
