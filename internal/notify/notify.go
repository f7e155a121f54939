// Package notify tells someone about channels that scored well above the average.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"tgscout/internal/ranking"
)

const report_notify_send = "notify.send"

type Notifier interface {
	Notify(ctx context.Context, channel ranking.Flagged) error
}

const header = "🔥 High-Quality Channel Found!"

// Message is the Telegram HTML message for a flagged channel.
func Message(channel ranking.Flagged) string {
	return message(channel, func(s string) string {
		return "<b>" + s + "</b>"
	}, html.EscapeString)
}

// Text is Message without any markup.
func Text(channel ranking.Flagged) string {
	identity := func(s string) string { return s }
	return message(channel, identity, identity)
}

func message(channel ranking.Flagged, bold, escape func(string) string) string {
	var b strings.Builder
	b.WriteString(bold(header))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Channel: %s\n", bold(escape(channel.Text)))
	fmt.Fprintf(&b, "URL: %s\n", escape(channel.URL))
	fmt.Fprintf(&b, "Subscribers: %s\n", escape(channel.Members.String()))
	fmt.Fprintf(
		&b,
		"Quality Score: %.1f/100 (%s above average)\n",
		float64(channel.Score),
		bold(fmt.Sprintf("%.1f%%", channel.PercentAboveAverage)),
	)
	if len(channel.Rationale) > 0 {
		b.WriteString("\nAnalysis:\n")
		for _, line := range channel.Rationale {
			fmt.Fprintf(&b, "- %s\n", escape(line))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
